package monitor_test

import (
	"database/sql"
	"fmt"
	"math"

	"catlink/config"
	"catlink/linkage"
	"catlink/models"
	"catlink/monitor"
)

// fakeProducts backs both the linkage engine and the price detector
type fakeProducts struct {
	products []models.Product
	failAll  bool
}

func (f *fakeProducts) GetProductByURL(url string) (*models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	for i := range f.products {
		if f.products[i].URL == url {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) GetProductByCode(retailer, code string) (*models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	for i := range f.products {
		if f.products[i].Retailer == retailer && f.products[i].GetProductCode() == code {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) GetProductsByRetailer(retailer string) ([]models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []models.Product
	for i := range f.products {
		if f.products[i].Retailer == retailer {
			out = append(out, f.products[i])
		}
	}
	return out, nil
}

func (f *fakeProducts) GetProductsNearPrice(retailer string, price, tolerance float64) ([]models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []models.Product
	for i := range f.products {
		if f.products[i].Retailer == retailer && math.Abs(f.products[i].Price-price) <= tolerance {
			out = append(out, f.products[i])
		}
	}
	return out, nil
}

var _ linkage.ProductStore = (*fakeProducts)(nil)
var _ monitor.ProductReader = (*fakeProducts)(nil)

// fakeQueue records enqueued price changes in order
type fakeQueue struct {
	changes []models.PriceChange
	failAll bool
}

func (f *fakeQueue) EnqueuePriceChange(pc *models.PriceChange) error {
	if f.failAll {
		return fmt.Errorf("queue unavailable")
	}
	f.changes = append(f.changes, *pc)
	return nil
}

var _ monitor.ChangeQueue = (*fakeQueue)(nil)

// fakePatterns is an in-memory PatternStore for the learner
type fakePatterns struct {
	patterns map[string]*models.RetailerURLPattern
}

func newFakePatterns() *fakePatterns {
	return &fakePatterns{patterns: make(map[string]*models.RetailerURLPattern)}
}

func (f *fakePatterns) GetPattern(retailer string) (*models.RetailerURLPattern, error) {
	p, ok := f.patterns[retailer]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePatterns) SavePattern(p *models.RetailerURLPattern) error {
	copied := *p
	f.patterns[p.Retailer] = &copied
	return nil
}

var _ linkage.PatternStore = (*fakePatterns)(nil)

// fakeScraper returns a fixed page of scraped products
type fakeScraper struct {
	products []models.ScrapedProduct
	err      error
	calls    int
}

func (f *fakeScraper) ScrapeCatalog(cfg *config.RetailerConfig, category string) ([]models.ScrapedProduct, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

var _ monitor.Scraper = (*fakeScraper)(nil)

// fakeSightings is an append-only in-memory sighting store
type fakeSightings struct {
	rows     []models.CatalogSighting
	nextID   int
	failSave map[string]bool // catalog URLs whose save should fail
}

func newFakeSightings() *fakeSightings {
	return &fakeSightings{nextID: 1, failSave: make(map[string]bool)}
}

func (f *fakeSightings) SaveSighting(s *models.CatalogSighting) (*models.CatalogSighting, error) {
	if f.failSave[s.CatalogURL] {
		return nil, fmt.Errorf("insert failed")
	}
	saved := *s
	saved.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, saved)
	return &saved, nil
}

func (f *fakeSightings) UpdateLinkage(sightingID int, productURL string, confidence float64, method string) error {
	for i := range f.rows {
		if f.rows[i].ID == sightingID {
			f.rows[i].LinkedProductURL = sql.NullString{String: productURL, Valid: true}
			f.rows[i].LinkConfidence = sql.NullFloat64{Float64: confidence, Valid: true}
			f.rows[i].LinkMethod = sql.NullString{String: method, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("sighting %d not found", sightingID)
}

func (f *fakeSightings) GetUnlinkedSightings(retailer string, limit int) ([]models.CatalogSighting, error) {
	var out []models.CatalogSighting
	for i := range f.rows {
		if f.rows[i].Retailer == retailer && !f.rows[i].IsLinked() {
			out = append(out, f.rows[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

var _ monitor.SightingStore = (*fakeSightings)(nil)
