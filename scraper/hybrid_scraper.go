package scraper

import (
	"log"
	"time"

	"catlink/config"
	"catlink/models"
)

// HybridCatalogScraper routes each retailer to the HTML or browser scraper
// based on its configuration. The browser is only launched the first time a
// browser-backed retailer is scraped.
type HybridCatalogScraper struct {
	html    *HTMLCatalogScraper
	browser *BrowserCatalogScraper
}

// NewHybridCatalogScraper creates the routing scraper
func NewHybridCatalogScraper(timeout, delay time.Duration) *HybridCatalogScraper {
	return &HybridCatalogScraper{
		html: NewHTMLCatalogScraper(timeout, delay),
	}
}

// ScrapeCatalog dispatches to the scraper the retailer is configured for
func (s *HybridCatalogScraper) ScrapeCatalog(cfg *config.RetailerConfig, category string) ([]models.ScrapedProduct, error) {
	if !cfg.UseBrowser {
		return s.html.ScrapeCatalog(cfg, category)
	}

	if s.browser == nil {
		browser, err := NewBrowserCatalogScraper()
		if err != nil {
			log.Printf("Browser unavailable for %s, falling back to HTML scraper: %v", cfg.Name, err)
			return s.html.ScrapeCatalog(cfg, category)
		}
		s.browser = browser
	}

	return s.browser.ScrapeCatalog(cfg, category)
}

// Close releases the browser if one was launched
func (s *HybridCatalogScraper) Close() {
	if s.browser != nil {
		s.browser.Close()
	}
	s.html.Close()
}
