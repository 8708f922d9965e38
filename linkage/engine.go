package linkage

import (
	"fmt"
	"math"
	"strings"

	"catlink/models"
)

// Linkage methods, ordered from most to least trusted
const (
	MethodExactURL        = "exact_url"
	MethodNormalizedURL   = "normalized_url"
	MethodProductCode     = "product_code"
	MethodExactTitlePrice = "exact_title_price"
	MethodFuzzyTitlePrice = "fuzzy_title_price"
	MethodImageURL        = "image_url_match"
)

// Matching thresholds. PriceTolerance is the matching window only; the price
// change detector deliberately uses zero tolerance when flagging differences.
const (
	DefaultMinConfidence = 0.85
	DefaultFuzzyFloor    = 0.90
	PriceTolerance       = 1.00
	ImagePriceTolerance  = 10.00
	ImageOverlapFloor    = 2.0 / 3.0
	LowStabilityCutoff   = 0.50
)

// ProductStore is the read surface of the canonical product table that the
// engine matches against. *repository.ProductRepository satisfies it; tests
// use an in-memory fake.
type ProductStore interface {
	GetProductByURL(url string) (*models.Product, error)
	GetProductByCode(retailer, code string) (*models.Product, error)
	GetProductsByRetailer(retailer string) ([]models.Product, error)
	GetProductsNearPrice(retailer string, price, tolerance float64) ([]models.Product, error)
}

// CodeExtractor pulls a retailer-specific product code out of a product URL,
// returning "" when the URL carries none.
type CodeExtractor func(retailer, url string) string

// MatchResult is the engine's decision for one sighting
type MatchResult struct {
	ProductURL string  `json:"product_url"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Engine decides whether a catalog sighting refers to a product the store
// already knows, via an ordered cascade of matchers where the first confident
// hit wins. A nil result is not an error: it means the sighting should be
// treated as a net-new product candidate.
type Engine struct {
	store         ProductStore
	learner       *Learner
	extractCode   CodeExtractor
	minConfidence float64
	fuzzyFloor    float64
}

type matcherFunc func(*models.CatalogSighting) (*MatchResult, error)

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithCodeExtractor sets the retailer product-code extractor
func WithCodeExtractor(fn CodeExtractor) EngineOption {
	return func(e *Engine) { e.extractCode = fn }
}

// WithMinConfidence overrides the linkage acceptance floor
func WithMinConfidence(min float64) EngineOption {
	return func(e *Engine) { e.minConfidence = min }
}

// WithFuzzyFloor overrides the fuzzy title similarity floor
func WithFuzzyFloor(floor float64) EngineOption {
	return func(e *Engine) { e.fuzzyFloor = floor }
}

// NewEngine creates a linkage engine over a product store. The learner may be
// nil, in which case the full cascade always runs.
func NewEngine(store ProductStore, learner *Learner, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         store,
		learner:       learner,
		minConfidence: DefaultMinConfidence,
		fuzzyFloor:    DefaultFuzzyFloor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match runs the cascade for one sighting. Store failures propagate; a clean
// pass with no confident candidate returns (nil, nil).
func (e *Engine) Match(s *models.CatalogSighting) (*MatchResult, error) {
	matchers := []matcherFunc{
		e.matchExactURL,
		e.matchNormalizedURL,
		e.matchProductCode,
		e.matchExactTitlePrice,
		e.matchFuzzyTitlePrice,
		e.matchImageURLs,
	}

	// Retailers known to reissue URLs constantly skip the URL-based tiers.
	// Title+price tiers still run, and fuzzy is always the last resort.
	if e.learner != nil && e.learner.PrefersFuzzy(s.Retailer) {
		matchers = matchers[3:]
	}

	for _, match := range matchers {
		result, err := match(s)
		if err != nil {
			return nil, fmt.Errorf("linkage match failed: %v", err)
		}
		if result != nil && result.Confidence >= e.minConfidence {
			return result, nil
		}
	}

	return nil, nil
}

// matchExactURL links on byte-equal URLs
func (e *Engine) matchExactURL(s *models.CatalogSighting) (*MatchResult, error) {
	p, err := e.store.GetProductByURL(s.CatalogURL)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &MatchResult{ProductURL: p.URL, Confidence: 1.0, Method: MethodExactURL}, nil
}

// matchNormalizedURL links on host+path equality after stripping query string
// and trailing slash
func (e *Engine) matchNormalizedURL(s *models.CatalogSighting) (*MatchResult, error) {
	products, err := e.store.GetProductsByRetailer(s.Retailer)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeURL(s.CatalogURL)
	for i := range products {
		if NormalizeURL(products[i].URL) == normalized {
			return &MatchResult{ProductURL: products[i].URL, Confidence: 0.95, Method: MethodNormalizedURL}, nil
		}
	}

	return nil, nil
}

// matchProductCode links on the retailer-issued code extracted from the URL
func (e *Engine) matchProductCode(s *models.CatalogSighting) (*MatchResult, error) {
	code := s.GetProductCode()
	if code == "" && e.extractCode != nil {
		code = e.extractCode(s.Retailer, s.CatalogURL)
	}
	if code == "" {
		return nil, nil
	}

	p, err := e.store.GetProductByCode(s.Retailer, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &MatchResult{ProductURL: p.URL, Confidence: 0.90, Method: MethodProductCode}, nil
}

// matchExactTitlePrice links on case-sensitive title equality with the price
// inside the matching tolerance
func (e *Engine) matchExactTitlePrice(s *models.CatalogSighting) (*MatchResult, error) {
	candidates, err := e.store.GetProductsNearPrice(s.Retailer, s.Price, PriceTolerance)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if candidates[i].Title == s.Title && math.Abs(candidates[i].Price-s.Price) < PriceTolerance {
			return &MatchResult{ProductURL: candidates[i].URL, Confidence: 0.95, Method: MethodExactTitlePrice}, nil
		}
	}

	return nil, nil
}

// matchFuzzyTitlePrice is the fallback of last resort: among products inside
// the price window, take the single highest title similarity and accept it
// when it clears the fuzzy floor. Confidence maps similarity 0.90..1.0 onto
// 0.85..0.90.
func (e *Engine) matchFuzzyTitlePrice(s *models.CatalogSighting) (*MatchResult, error) {
	candidates, err := e.store.GetProductsNearPrice(s.Retailer, s.Price, PriceTolerance)
	if err != nil {
		return nil, err
	}

	title := strings.ToLower(s.Title)
	var best *models.Product
	bestSim := 0.0
	for i := range candidates {
		if math.Abs(candidates[i].Price-s.Price) >= PriceTolerance {
			continue
		}
		sim := Similarity(title, strings.ToLower(candidates[i].Title))
		if sim > bestSim {
			bestSim = sim
			best = &candidates[i]
		}
	}

	if best == nil || bestSim < e.fuzzyFloor {
		return nil, nil
	}

	confidence := 0.85 + (bestSim-0.90)*0.5
	return &MatchResult{ProductURL: best.URL, Confidence: confidence, Method: MethodFuzzyTitlePrice}, nil
}

// matchImageURLs is a secondary signal for retailers that rename products but
// keep the same photographs: image-set overlap with the price within $10.
func (e *Engine) matchImageURLs(s *models.CatalogSighting) (*MatchResult, error) {
	if len(s.ImageURLs) == 0 {
		return nil, nil
	}

	candidates, err := e.store.GetProductsNearPrice(s.Retailer, s.Price, ImagePriceTolerance)
	if err != nil {
		return nil, err
	}

	var best *models.Product
	bestOverlap := 0.0
	for i := range candidates {
		overlap := imageOverlap(s.ImageURLs, candidates[i].ImageURLs)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = &candidates[i]
		}
	}

	if best == nil || bestOverlap < ImageOverlapFloor {
		return nil, nil
	}

	// 2/3 overlap maps to the acceptance floor, full overlap to 0.90
	confidence := 0.85 + (bestOverlap-ImageOverlapFloor)*0.15
	return &MatchResult{ProductURL: best.URL, Confidence: confidence, Method: MethodImageURL}, nil
}

// imageOverlap returns the Jaccard overlap of two image URL sets
func imageOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]bool, len(a))
	for _, u := range a {
		setA[u] = true
	}
	setB := make(map[string]bool, len(b))
	for _, u := range b {
		setB[u] = true
	}

	intersection := 0
	union := len(setA)
	for u := range setB {
		if setA[u] {
			intersection++
		} else {
			union++
		}
	}

	return float64(intersection) / float64(union)
}
