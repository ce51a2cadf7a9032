package client

import (
	"context"
	"strings"
	"sync"

	"github.com/segyhp/loan-e2e/internal/domain"
	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// ProductResolver maps product names used in feature files to product ids.
// The listing is cached for the run and refetched once when a name is
// missing, since a feature may create its product after the first lookup.
type ProductResolver struct {
	api API

	mu       sync.Mutex
	products map[string]int64
}

func NewProductResolver(api API) *ProductResolver {
	return &ProductResolver{api: api}
}

// Resolve matches on name or short name, case-insensitively
func (r *ProductResolver) Resolve(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fetched := false
	if r.products == nil {
		if err := r.load(ctx); err != nil {
			return 0, err
		}
		fetched = true
	}

	id, ok := r.products[normalize(name)]
	if !ok && !fetched {
		if err := r.load(ctx); err != nil {
			return 0, err
		}
		id, ok = r.products[normalize(name)]
	}
	if !ok {
		return 0, apperrors.WrapUnknownProduct(name)
	}
	return id, nil
}

func (r *ProductResolver) load(ctx context.Context) error {
	products, err := r.api.ListLoanProducts(ctx)
	if err != nil {
		return err
	}
	r.products = index(products)
	return nil
}

func index(products []domain.LoanProduct) map[string]int64 {
	m := make(map[string]int64, len(products)*2)
	for _, p := range products {
		if p.ShortName != "" {
			m[normalize(p.ShortName)] = p.ID
		}
		m[normalize(p.Name)] = p.ID
	}
	return m
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
