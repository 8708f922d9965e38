package linkage_test

import (
	"fmt"
	"math"

	"catlink/linkage"
	"catlink/models"
)

// fakeProductStore is an in-memory ProductStore for engine tests
type fakeProductStore struct {
	products []models.Product
	failAll  bool
}

func (f *fakeProductStore) GetProductByURL(url string) (*models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	for i := range f.products {
		if f.products[i].URL == url {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProductStore) GetProductByCode(retailer, code string) (*models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	for i := range f.products {
		if f.products[i].Retailer == retailer && f.products[i].GetProductCode() == code {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProductStore) GetProductsByRetailer(retailer string) ([]models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []models.Product
	for i := range f.products {
		if f.products[i].Retailer == retailer {
			out = append(out, f.products[i])
		}
	}
	return out, nil
}

func (f *fakeProductStore) GetProductsNearPrice(retailer string, price, tolerance float64) ([]models.Product, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var out []models.Product
	for i := range f.products {
		if f.products[i].Retailer == retailer && math.Abs(f.products[i].Price-price) <= tolerance {
			out = append(out, f.products[i])
		}
	}
	return out, nil
}

var _ linkage.ProductStore = (*fakeProductStore)(nil)

// fakePatternStore is an in-memory PatternStore for learner tests
type fakePatternStore struct {
	patterns map[string]*models.RetailerURLPattern
	failAll  bool
	saves    int
}

func newFakePatternStore() *fakePatternStore {
	return &fakePatternStore{patterns: make(map[string]*models.RetailerURLPattern)}
}

func (f *fakePatternStore) GetPattern(retailer string) (*models.RetailerURLPattern, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	p, ok := f.patterns[retailer]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePatternStore) SavePattern(p *models.RetailerURLPattern) error {
	if f.failAll {
		return fmt.Errorf("store unavailable")
	}
	copied := *p
	f.patterns[p.Retailer] = &copied
	f.saves++
	return nil
}

var _ linkage.PatternStore = (*fakePatternStore)(nil)
