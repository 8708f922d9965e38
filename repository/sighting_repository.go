package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catlink/database"
	"catlink/models"
)

type SightingRepository struct{}

func NewSightingRepository() *SightingRepository {
	return &SightingRepository{}
}

const sightingColumns = `id, catalog_url, retailer, category, title, price, product_code,
	image_urls, scan_type, linked_product_url, link_confidence, link_method, discovered_date`

// SaveSighting appends one catalog sighting row. Sightings are append-only:
// saving the same observation twice creates two independent rows.
func (r *SightingRepository) SaveSighting(s *models.CatalogSighting) (*models.CatalogSighting, error) {
	query := `
		INSERT INTO catalog_products (catalog_url, retailer, category, title, price, product_code, image_urls, scan_type, discovered_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, discovered_date
	`

	saved := *s
	now := time.Now()
	err := database.DB.QueryRow(query,
		s.CatalogURL, s.Retailer, s.Category, s.Title, s.Price,
		s.ProductCode, models.EncodeImageURLs(s.ImageURLs), s.ScanType, now,
	).Scan(&saved.ID, &saved.DiscoveredDate)
	if err != nil {
		return nil, fmt.Errorf("failed to save sighting: %v", err)
	}

	return &saved, nil
}

// UpdateLinkage writes the linkage decision back onto a sighting row
func (r *SightingRepository) UpdateLinkage(sightingID int, productURL string, confidence float64, method string) error {
	query := `
		UPDATE catalog_products
		SET linked_product_url = $2, link_confidence = $3, link_method = $4
		WHERE id = $1
	`

	_, err := database.DB.Exec(query, sightingID, productURL, confidence, method)
	if err != nil {
		return fmt.Errorf("failed to update sighting linkage: %v", err)
	}

	return nil
}

// GetUnlinkedSightings returns a retailer's sightings with no linkage decision,
// oldest first, for the backfill linker and the assessment queue view
func (r *SightingRepository) GetUnlinkedSightings(retailer string, limit int) ([]models.CatalogSighting, error) {
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT ` + sightingColumns + `
		FROM catalog_products
		WHERE retailer = $1 AND linked_product_url IS NULL
		ORDER BY discovered_date ASC
		LIMIT $2
	`

	rows, err := database.DB.Query(query, retailer, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unlinked sightings: %v", err)
	}
	defer rows.Close()

	return collectSightings(rows)
}

// GetRecentSightings returns a retailer's most recent sightings
func (r *SightingRepository) GetRecentSightings(retailer string, limit int) ([]models.CatalogSighting, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + sightingColumns + `
		FROM catalog_products
		WHERE retailer = $1
		ORDER BY discovered_date DESC
		LIMIT $2
	`

	rows, err := database.DB.Query(query, retailer, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sightings: %v", err)
	}
	defer rows.Close()

	return collectSightings(rows)
}

func collectSightings(rows *sql.Rows) ([]models.CatalogSighting, error) {
	var sightings []models.CatalogSighting
	for rows.Next() {
		var s models.CatalogSighting
		var imageURLs string
		err := rows.Scan(
			&s.ID, &s.CatalogURL, &s.Retailer, &s.Category, &s.Title, &s.Price,
			&s.ProductCode, &imageURLs, &s.ScanType,
			&s.LinkedProductURL, &s.LinkConfidence, &s.LinkMethod, &s.DiscoveredDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %v", err)
		}
		s.ImageURLs = models.DecodeImageURLs(imageURLs)
		sightings = append(sightings, s)
	}
	return sightings, nil
}
