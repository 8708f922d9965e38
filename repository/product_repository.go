package repository

import (
	"database/sql"
	"fmt"
	"time"

	"catlink/database"
	"catlink/models"
)

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

const productColumns = `url, retailer, title, price, product_code, image_urls, first_seen, last_updated`

// scanProduct scans one products row, decoding the image_urls TEXT column
func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	var imageURLs string
	err := row.Scan(
		&p.URL, &p.Retailer, &p.Title, &p.Price,
		&p.ProductCode, &imageURLs, &p.FirstSeen, &p.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	p.ImageURLs = models.DecodeImageURLs(imageURLs)
	return &p, nil
}

// GetProductByURL returns the product with the exact URL, or nil when unknown
func (r *ProductRepository) GetProductByURL(url string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE url = $1
	`

	p, err := scanProduct(database.DB.QueryRow(query, url))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by URL: %v", err)
	}

	return p, nil
}

// GetProductByCode returns the retailer's product with the given product code,
// or nil when no product carries that code
func (r *ProductRepository) GetProductByCode(retailer, code string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE retailer = $1 AND product_code = $2
		ORDER BY last_updated DESC
		LIMIT 1
	`

	p, err := scanProduct(database.DB.QueryRow(query, retailer, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by code: %v", err)
	}

	return p, nil
}

// GetProductsByRetailer returns all known products for a retailer
func (r *ProductRepository) GetProductsByRetailer(retailer string) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE retailer = $1
		ORDER BY first_seen ASC
	`

	rows, err := database.DB.Query(query, retailer)
	if err != nil {
		return nil, fmt.Errorf("failed to get products for retailer: %v", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// GetProductsNearPrice returns the retailer's products priced within tolerance
// of the given price. Used as the candidate set for title-based matching.
func (r *ProductRepository) GetProductsNearPrice(retailer string, price, tolerance float64) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE retailer = $1 AND ABS(price - $2) <= $3
		ORDER BY first_seen ASC
	`

	rows, err := database.DB.Query(query, retailer, price, tolerance)
	if err != nil {
		return nil, fmt.Errorf("failed to get products near price: %v", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// UpsertProduct inserts a product or refreshes an existing row's metadata.
// Price and title are only written on insert; the linkage path never mutates
// canonical price (that is deferred to the update queue).
func (r *ProductRepository) UpsertProduct(p *models.Product) error {
	query := `
		INSERT INTO products (url, retailer, title, price, product_code, image_urls, first_seen, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (url) DO UPDATE SET
			last_updated = EXCLUDED.last_updated
	`

	now := time.Now()
	_, err := database.DB.Exec(query,
		p.URL, p.Retailer, p.Title, p.Price,
		p.ProductCode, models.EncodeImageURLs(p.ImageURLs), now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %v", err)
	}

	return nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, *p)
	}
	return products, nil
}
