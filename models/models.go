package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Scan types for catalog sightings
const (
	ScanTypeBaseline = "baseline"
	ScanTypeMonitor  = "monitor"
)

// Product represents a canonical product known to the system, one row per item.
// The URL is the primary identity within a retailer but is not guaranteed
// stable across re-catalog passes, which is why linkage exists at all.
type Product struct {
	URL         string         `json:"url" db:"url"`
	Retailer    string         `json:"retailer" db:"retailer"`
	Title       string         `json:"title" db:"title"`
	Price       float64        `json:"price" db:"price"`
	ProductCode sql.NullString `json:"-" db:"product_code"`
	ImageURLs   []string       `json:"image_urls" db:"image_urls"`
	FirstSeen   time.Time      `json:"first_seen" db:"first_seen"`
	LastUpdated time.Time      `json:"last_updated" db:"last_updated"`
}

// GetProductCode returns the product code or "" when none was extracted
func (p *Product) GetProductCode() string {
	if p.ProductCode.Valid {
		return p.ProductCode.String
	}
	return ""
}

// MarshalJSON renders the nullable product code as a plain string or null
func (p *Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		*Alias
		ProductCode *string `json:"product_code"`
	}{
		Alias:       (*Alias)(p),
		ProductCode: nullStringPtr(p.ProductCode),
	})
}

// CatalogSighting is one observation of a product during a scrape pass.
// Sightings are append-only; the linkage engine writes its decision back onto
// the row (linked_product_url, link_confidence, link_method) or leaves it
// unlinked, signaling a net-new product candidate.
type CatalogSighting struct {
	ID               int             `json:"id" db:"id"`
	CatalogURL       string          `json:"catalog_url" db:"catalog_url"`
	Retailer         string          `json:"retailer" db:"retailer"`
	Category         string          `json:"category" db:"category"`
	Title            string          `json:"title" db:"title"`
	Price            float64         `json:"price" db:"price"`
	ProductCode      sql.NullString  `json:"-" db:"product_code"`
	ImageURLs        []string        `json:"image_urls" db:"image_urls"`
	ScanType         string          `json:"scan_type" db:"scan_type"`
	LinkedProductURL sql.NullString  `json:"-" db:"linked_product_url"`
	LinkConfidence   sql.NullFloat64 `json:"-" db:"link_confidence"`
	LinkMethod       sql.NullString  `json:"-" db:"link_method"`
	DiscoveredDate   time.Time       `json:"discovered_date" db:"discovered_date"`
}

// IsLinked returns true once the linkage engine attached this sighting to a product
func (s *CatalogSighting) IsLinked() bool {
	return s.LinkedProductURL.Valid && s.LinkedProductURL.String != ""
}

// GetLinkedProductURL returns the linked product URL or "" when unlinked
func (s *CatalogSighting) GetLinkedProductURL() string {
	if s.LinkedProductURL.Valid {
		return s.LinkedProductURL.String
	}
	return ""
}

// GetProductCode returns the sighting's product code or "" when none was scraped
func (s *CatalogSighting) GetProductCode() string {
	if s.ProductCode.Valid {
		return s.ProductCode.String
	}
	return ""
}

// MarshalJSON renders the nullable linkage columns as plain values or null
func (s *CatalogSighting) MarshalJSON() ([]byte, error) {
	type Alias CatalogSighting
	return json.Marshal(&struct {
		*Alias
		ProductCode      *string  `json:"product_code"`
		LinkedProductURL *string  `json:"linked_product_url"`
		LinkConfidence   *float64 `json:"link_confidence"`
		LinkMethod       *string  `json:"link_method"`
	}{
		Alias:            (*Alias)(s),
		ProductCode:      nullStringPtr(s.ProductCode),
		LinkedProductURL: nullStringPtr(s.LinkedProductURL),
		LinkConfidence:   nullFloatPtr(s.LinkConfidence),
		LinkMethod:       nullStringPtr(s.LinkMethod),
	})
}

// RetailerURLPattern is the learned per-retailer linkage profile: how stable
// the retailer's product URLs are and which dedup method has worked best so far.
type RetailerURLPattern struct {
	Retailer                 string    `json:"retailer" db:"retailer"`
	URLStabilityScore        float64   `json:"url_stability_score" db:"url_stability_score"`
	SampleSize               int       `json:"sample_size" db:"sample_size"`
	BestDedupMethod          string    `json:"best_dedup_method" db:"best_dedup_method"`
	DedupConfidenceThreshold float64   `json:"dedup_confidence_threshold" db:"dedup_confidence_threshold"`
	URLChangesDetected       int       `json:"url_changes_detected" db:"url_changes_detected"`
	LastMeasured             time.Time `json:"last_measured" db:"last_measured"`
	Notes                    string    `json:"notes" db:"notes"`
}

// PriceChange is one entry in the product update queue: a linked sighting whose
// catalog price disagreed with the stored canonical price. Consumed by an
// external reprocessing workflow; this system never mutates canonical prices.
type PriceChange struct {
	ID              int       `json:"id" db:"id"`
	ProductURL      string    `json:"product_url" db:"product_url"`
	Retailer        string    `json:"retailer" db:"retailer"`
	CatalogPrice    float64   `json:"catalog_price" db:"catalog_price"`
	ProductsPrice   float64   `json:"products_price" db:"products_price"`
	PriceDifference float64   `json:"price_difference" db:"price_difference"`
	DetectedAt      time.Time `json:"detected_at" db:"detected_at"`
	Processed       bool      `json:"processed" db:"processed"`
}

// ScrapedProduct is what the scraper yields per product per catalog page,
// before a sighting row exists for it.
type ScrapedProduct struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	ProductCode string   `json:"product_code"`
	ImageURLs   []string `json:"image_urls"`
}

// EncodeImageURLs serializes an image URL list for the TEXT column
func EncodeImageURLs(urls []string) string {
	if len(urls) == 0 {
		return "[]"
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeImageURLs parses the TEXT column back into an ordered list
func DecodeImageURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}
	return urls
}

func nullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		s := ns.String
		return &s
	}
	return nil
}

func nullFloatPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		f := nf.Float64
		return &f
	}
	return nil
}
