package scraper

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"catlink/config"
	"catlink/models"
)

// BrowserCatalogScraper drives a headless browser for retailers whose catalog
// pages only render client-side.
type BrowserCatalogScraper struct {
	browser *rod.Browser
}

// NewBrowserCatalogScraper launches the headless browser
func NewBrowserCatalogScraper() (*BrowserCatalogScraper, error) {
	// Use system Chromium in Docker, auto-detect locally
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	return &BrowserCatalogScraper{browser: browser}, nil
}

// ScrapeCatalog renders one category page and extracts the product tiles
func (s *BrowserCatalogScraper) ScrapeCatalog(cfg *config.RetailerConfig, category string) ([]models.ScrapedProduct, error) {
	path, ok := cfg.CategoryURLs[category]
	if !ok {
		return nil, fmt.Errorf("retailer %s has no category %q", cfg.Name, category)
	}
	pageURL := strings.TrimSuffix(cfg.BaseURL, "/") + path

	var products []models.ScrapedProduct
	err := rod.Try(func() {
		page := s.browser.MustPage(pageURL)
		defer page.MustClose()

		page.MustSetViewport(1920, 1080, 1.0, false)
		page.MustWaitLoad()

		for _, tile := range page.MustElements(cfg.Selectors.ProductTile) {
			product, ok := s.extractTile(cfg, tile)
			if ok {
				products = append(products, product)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %v", pageURL, err)
	}

	log.Printf("Scraped %d products from %s (%s/%s)", len(products), pageURL, cfg.Name, category)
	return products, nil
}

// extractTile pulls one product off a catalog tile. Tiles missing any of the
// required elements are skipped rather than failing the page.
func (s *BrowserCatalogScraper) extractTile(cfg *config.RetailerConfig, tile *rod.Element) (models.ScrapedProduct, bool) {
	var product models.ScrapedProduct

	err := rod.Try(func() {
		title := strings.TrimSpace(tile.MustElement(cfg.Selectors.Title).MustText())
		priceText := tile.MustElement(cfg.Selectors.Price).MustText()
		href := tile.MustElement(cfg.Selectors.Link).MustAttribute("href")

		price, perr := ParsePrice(priceText)
		if perr != nil || title == "" || href == nil {
			return
		}

		productURL := absoluteURL(cfg.BaseURL, *href)
		var images []string
		for _, img := range tile.MustElements(cfg.Selectors.Image) {
			if src := img.MustAttribute("src"); src != nil {
				if u := absoluteURL(cfg.BaseURL, *src); u != "" {
					images = append(images, u)
				}
			}
		}

		product = models.ScrapedProduct{
			URL:         productURL,
			Title:       title,
			Price:       price,
			ProductCode: cfg.ExtractProductCode(productURL),
			ImageURLs:   images,
		}
	})
	if err != nil || product.URL == "" {
		return models.ScrapedProduct{}, false
	}

	return product, true
}

// Close shuts the browser down
func (s *BrowserCatalogScraper) Close() {
	if s.browser != nil {
		s.browser.MustClose()
	}
}
