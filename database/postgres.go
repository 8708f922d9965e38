package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase initializes the database connection
func InitDatabase() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Test the connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			url TEXT PRIMARY KEY,
			retailer TEXT NOT NULL,
			title TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			product_code TEXT,
			image_urls TEXT DEFAULT '[]',
			first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_products (
			id SERIAL PRIMARY KEY,
			catalog_url TEXT NOT NULL,
			retailer TEXT NOT NULL,
			category TEXT,
			title TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			product_code TEXT,
			image_urls TEXT DEFAULT '[]',
			scan_type VARCHAR(20) NOT NULL CHECK (scan_type IN ('baseline', 'monitor')),
			linked_product_url TEXT,
			link_confidence DECIMAL(4,3),
			link_method VARCHAR(30),
			discovered_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS retailer_url_patterns (
			retailer TEXT PRIMARY KEY,
			url_stability_score DECIMAL(4,3) DEFAULT 1.0,
			sample_size INTEGER DEFAULT 0,
			best_dedup_method VARCHAR(30),
			dedup_confidence_threshold DECIMAL(4,3) DEFAULT 0.85,
			url_changes_detected INTEGER DEFAULT 0,
			last_measured TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			notes TEXT DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS product_update_queue (
			id SERIAL PRIMARY KEY,
			product_url TEXT NOT NULL,
			retailer TEXT NOT NULL,
			catalog_price DECIMAL(10,2) NOT NULL,
			products_price DECIMAL(10,2) NOT NULL,
			price_difference DECIMAL(10,2) NOT NULL,
			detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			processed BOOLEAN DEFAULT FALSE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_products_retailer ON products (retailer)`,
		`CREATE INDEX IF NOT EXISTS idx_products_code ON products (retailer, product_code)
		WHERE product_code IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_products_retailer_price ON products (retailer, price)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_products_retailer ON catalog_products (retailer, discovered_date)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_products_unlinked ON catalog_products (retailer)
		WHERE linked_product_url IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_update_queue_unprocessed ON product_update_queue (retailer, detected_at)
		WHERE processed = FALSE`,
	}

	for _, query := range queries {
		_, err := DB.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
