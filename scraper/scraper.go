package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"catlink/config"
	"catlink/models"
)

// CatalogScraper yields the products visible on one retailer category page.
// The linkage core only depends on this contract, not on how pages are fetched.
type CatalogScraper interface {
	ScrapeCatalog(cfg *config.RetailerConfig, category string) ([]models.ScrapedProduct, error)
	Close()
}

var priceRe = regexp.MustCompile(`[\d][\d,]*\.?\d*`)

// ParsePrice extracts a numeric price from display text like "$89.99" or
// "1,299.00 USD"
func ParsePrice(text string) (float64, error) {
	m := priceRe.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("no price found in %q", text)
	}

	m = strings.ReplaceAll(m, ",", "")
	price, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q: %v", text, err)
	}

	return price, nil
}

// absoluteURL resolves a possibly-relative href against the retailer base URL
func absoluteURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(href, "/")
}
