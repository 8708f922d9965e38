package config

import (
	"regexp"
)

// CatalogSelectors holds the CSS selectors used to pull product tiles off a
// retailer's catalog page. Only the minimal set the monitor needs.
type CatalogSelectors struct {
	ProductTile string
	Title       string
	Price       string
	Link        string
	Image       string
}

// RetailerConfig describes one monitored retailer: where its category pages
// live, how to pull product codes out of its URLs, and which scraper to use.
type RetailerConfig struct {
	Name             string
	BaseURL          string
	CategoryURLs     map[string]string
	ProductCodeRegex string
	UseBrowser       bool
	Selectors        CatalogSelectors

	codeRe *regexp.Regexp
}

// ExtractProductCode pulls the retailer-specific product code out of a product
// URL, or returns "" when the URL carries none.
func (rc *RetailerConfig) ExtractProductCode(url string) string {
	if rc.ProductCodeRegex == "" {
		return ""
	}
	if rc.codeRe == nil {
		re, err := regexp.Compile(rc.ProductCodeRegex)
		if err != nil {
			return ""
		}
		rc.codeRe = re
	}
	m := rc.codeRe.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// DefaultRetailers returns the built-in retailer configurations. Category URLs
// can be overridden per retailer with RETAILER_<NAME>_CATALOG_URL.
func DefaultRetailers() map[string]*RetailerConfig {
	retailers := map[string]*RetailerConfig{
		"revolve": {
			Name:             "revolve",
			BaseURL:          getEnvOrDefault("RETAILER_REVOLVE_BASE_URL", "https://www.revolve.com"),
			ProductCodeRegex: `dp/([A-Z]{4}-[A-Z]{2}\d+)`,
			UseBrowser:       getEnvOrDefault("RETAILER_REVOLVE_USE_BROWSER", "false") == "true",
			CategoryURLs: map[string]string{
				"dresses": "/dresses/br/a8e981/",
				"tops":    "/tops/br/12ae51/",
			},
			Selectors: CatalogSelectors{
				ProductTile: "div.plp__item",
				Title:       "div.plp__name",
				Price:       "span.plp__price",
				Link:        "a.plp__image-link",
				Image:       "img.plp__image",
			},
		},
		"aritzia": {
			Name:             "aritzia",
			BaseURL:          getEnvOrDefault("RETAILER_ARITZIA_BASE_URL", "https://www.aritzia.com"),
			ProductCodeRegex: `/product/[^/]+/(\d+)\.html`,
			UseBrowser:       getEnvOrDefault("RETAILER_ARITZIA_USE_BROWSER", "true") == "true",
			CategoryURLs: map[string]string{
				"dresses":  "/us/en/clothing/dresses",
				"sweaters": "/us/en/clothing/sweaters",
			},
			Selectors: CatalogSelectors{
				ProductTile: "div.product-tile",
				Title:       "div.product-name",
				Price:       "span.price",
				Link:        "a.product-link",
				Image:       "img.product-image",
			},
		},
	}
	return retailers
}
