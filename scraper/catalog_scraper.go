package scraper

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"catlink/config"
	"catlink/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTMLCatalogScraper scrapes retailers whose catalog pages render server-side.
// One collector per page visit; no shared state between scrapes.
type HTMLCatalogScraper struct {
	timeout time.Duration
	delay   time.Duration
}

// NewHTMLCatalogScraper creates an HTML catalog scraper
func NewHTMLCatalogScraper(timeout, delay time.Duration) *HTMLCatalogScraper {
	return &HTMLCatalogScraper{timeout: timeout, delay: delay}
}

// ScrapeCatalog fetches one category page and extracts the product tiles
func (s *HTMLCatalogScraper) ScrapeCatalog(cfg *config.RetailerConfig, category string) ([]models.ScrapedProduct, error) {
	path, ok := cfg.CategoryURLs[category]
	if !ok {
		return nil, fmt.Errorf("retailer %s has no category %q", cfg.Name, category)
	}
	pageURL := strings.TrimSuffix(cfg.BaseURL, "/") + path

	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
	)
	c.SetRequestTimeout(s.timeout)
	if s.delay > 0 {
		c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: s.delay})
	}

	var products []models.ScrapedProduct
	c.OnHTML(cfg.Selectors.ProductTile, func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText(cfg.Selectors.Title))
		if title == "" {
			return
		}

		price, err := ParsePrice(e.ChildText(cfg.Selectors.Price))
		if err != nil {
			log.Printf("Skipping tile without price on %s: %v", pageURL, err)
			return
		}

		productURL := e.Request.AbsoluteURL(e.ChildAttr(cfg.Selectors.Link, "href"))
		if productURL == "" {
			return
		}

		var images []string
		for _, src := range e.ChildAttrs(cfg.Selectors.Image, "src") {
			if img := absoluteURL(cfg.BaseURL, src); img != "" {
				images = append(images, img)
			}
		}

		products = append(products, models.ScrapedProduct{
			URL:         productURL,
			Title:       title,
			Price:       price,
			ProductCode: cfg.ExtractProductCode(productURL),
			ImageURLs:   images,
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %v", pageURL, err)
	}
	c.Wait()
	if visitErr != nil {
		return nil, fmt.Errorf("failed to scrape %s: %v", pageURL, visitErr)
	}

	log.Printf("Scraped %d products from %s (%s/%s)", len(products), pageURL, cfg.Name, category)
	return products, nil
}

// Close is a no-op; the HTML scraper holds no resources
func (s *HTMLCatalogScraper) Close() {}
