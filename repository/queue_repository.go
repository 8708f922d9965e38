package repository

import (
	"fmt"
	"time"

	"catlink/database"
	"catlink/models"
)

type QueueRepository struct{}

func NewQueueRepository() *QueueRepository {
	return &QueueRepository{}
}

// EnqueuePriceChange appends one entry to the product update queue. The queue
// is append-only; reprocessing the same sighting queues a duplicate entry and
// dedup is left to the consumer.
func (r *QueueRepository) EnqueuePriceChange(pc *models.PriceChange) error {
	query := `
		INSERT INTO product_update_queue (product_url, retailer, catalog_price, products_price, price_difference, detected_at, processed)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
	`

	_, err := database.DB.Exec(query,
		pc.ProductURL, pc.Retailer, pc.CatalogPrice, pc.ProductsPrice,
		pc.PriceDifference, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue price change: %v", err)
	}

	return nil
}

// GetPendingChanges returns unprocessed queue entries, oldest first
func (r *QueueRepository) GetPendingChanges(limit int) ([]models.PriceChange, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, product_url, retailer, catalog_price, products_price, price_difference, detected_at, processed
		FROM product_update_queue
		WHERE processed = FALSE
		ORDER BY detected_at ASC
		LIMIT $1
	`

	rows, err := database.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending price changes: %v", err)
	}
	defer rows.Close()

	var changes []models.PriceChange
	for rows.Next() {
		var pc models.PriceChange
		err := rows.Scan(
			&pc.ID, &pc.ProductURL, &pc.Retailer, &pc.CatalogPrice,
			&pc.ProductsPrice, &pc.PriceDifference, &pc.DetectedAt, &pc.Processed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price change: %v", err)
		}
		changes = append(changes, pc)
	}

	return changes, nil
}

// MarkProcessed flags a queue entry as consumed
func (r *QueueRepository) MarkProcessed(id int) error {
	query := `UPDATE product_update_queue SET processed = TRUE WHERE id = $1`

	result, err := database.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to mark price change processed: %v", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("price change %d not found", id)
	}

	return nil
}
