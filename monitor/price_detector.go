package monitor

import (
	"log"

	"catlink/models"
)

// ProductReader is the single product lookup the detector needs
type ProductReader interface {
	GetProductByURL(url string) (*models.Product, error)
}

// ChangeQueue receives detected price discrepancies
type ChangeQueue interface {
	EnqueuePriceChange(pc *models.PriceChange) error
}

// PriceDetector compares linked sightings against the stored canonical price
// and queues discrepancies for the external reprocessing workflow. It never
// mutates the canonical price itself.
type PriceDetector struct {
	products ProductReader
	queue    ChangeQueue
}

// NewPriceDetector creates a price detector
func NewPriceDetector(products ProductReader, queue ChangeQueue) *PriceDetector {
	return &PriceDetector{products: products, queue: queue}
}

// Detect enqueues one update-queue entry for every linked sighting whose
// catalog price differs from the stored price by any nonzero amount. The
// difference is signed catalog - products. No tolerance band applies here:
// the $1 window is a matching concern, not a flagging one. Duplicate entries
// for reprocessed sightings are expected; dedup belongs to the consumer.
func (d *PriceDetector) Detect(sightings []models.CatalogSighting, retailer string) int {
	detected := 0

	for i := range sightings {
		s := &sightings[i]
		if !s.IsLinked() {
			continue
		}

		product, err := d.products.GetProductByURL(s.GetLinkedProductURL())
		if err != nil {
			log.Printf("Failed to load product %s for price check: %v", s.GetLinkedProductURL(), err)
			continue
		}
		if product == nil {
			log.Printf("Linked product %s no longer exists, skipping price check", s.GetLinkedProductURL())
			continue
		}

		if s.Price == product.Price {
			continue
		}

		change := &models.PriceChange{
			ProductURL:      product.URL,
			Retailer:        retailer,
			CatalogPrice:    s.Price,
			ProductsPrice:   product.Price,
			PriceDifference: s.Price - product.Price,
		}
		if err := d.queue.EnqueuePriceChange(change); err != nil {
			log.Printf("Failed to enqueue price change for %s: %v", product.URL, err)
			continue
		}

		detected++
		log.Printf("Price change for %s: catalog $%.2f vs stored $%.2f (%+.2f)",
			product.URL, s.Price, product.Price, change.PriceDifference)
	}

	return detected
}
