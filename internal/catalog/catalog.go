// Package catalog holds the static product catalog and its query operations.
// The catalog is loaded once at process start and never mutated.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

//go:embed products.yaml
var productsYAML []byte

type Repository struct {
	products []Product
	byID     map[int]Product
}

// Load parses the embedded catalog document. Duplicate ids are a data bug and
// fail loading outright.
func Load() (*Repository, error) {
	var doc struct {
		Products []Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(productsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	byID := make(map[int]Product, len(doc.Products))
	for _, p := range doc.Products {
		if _, exists := byID[p.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate product id %d", p.ID)
		}
		byID[p.ID] = p
	}

	return &Repository{
		products: doc.Products,
		byID:     byID,
	}, nil
}

// FindByID returns the product with the given id, or false if absent.
func (r *Repository) FindByID(id int) (Product, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns the catalog in insertion order.
func (r *Repository) All() []Product {
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out
}

// Categories returns the closed category set.
func (r *Repository) Categories() []string {
	out := make([]string, len(Categories))
	copy(out, Categories)
	return out
}

// Search matches the query as a case-insensitive substring of the product
// name or category. A blank query returns an empty result rather than the
// whole catalog; the search-suggestion UI must never dump everything.
func (r *Repository) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Product{}
	}
	matched := []Product{}
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Sort keys accepted by FilterAndSort. Anything else keeps catalog order,
// which is also what "featured" means.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
	SortNewest    = "newest"
)

// FilterAndSort applies the search substring filter, then category
// membership (an empty filter set filters nothing), then a stable sort.
func (r *Repository) FilterAndSort(sortBy string, categoryFilters []string, searchQuery string) []Product {
	filtered := r.products

	if q := strings.ToLower(strings.TrimSpace(searchQuery)); q != "" {
		next := []Product{}
		for _, p := range filtered {
			if strings.Contains(strings.ToLower(p.Name), q) ||
				strings.Contains(strings.ToLower(p.Category), q) {
				next = append(next, p)
			}
		}
		filtered = next
	}

	if len(categoryFilters) > 0 {
		wanted := make(map[string]bool, len(categoryFilters))
		for _, c := range categoryFilters {
			wanted[c] = true
		}
		next := []Product{}
		for _, p := range filtered {
			if wanted[p.Category] {
				next = append(next, p)
			}
		}
		filtered = next
	}

	out := make([]Product, len(filtered))
	copy(out, filtered)

	switch sortBy {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceNumeric < out[j].PriceNumeric })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceNumeric > out[j].PriceNumeric })
	case SortName:
		// CompareString mutates collator-internal buffers, so the collator
		// must not be shared across concurrent requests.
		collator := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return collator.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].IsNew && !out[j].IsNew })
	}

	return out
}
