// Package cart owns the shopping bag: an ordered collection of line items,
// one per product, persisted to local storage on every mutation.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"storefront/internal/catalog"
	"storefront/internal/storage"
)

const storageKey = "sinea-jewelry-cart"

// LineItem is one aggregated cart entry. Price fields are snapshotted when
// the product is first added and never re-synced against the catalog. The
// JSON shape is the persisted wire format, so renaming a tag is a breaking
// change for existing storage files.
type LineItem struct {
	ProductID    int    `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	PriceNumeric int64  `json:"priceNumeric"`
	Image        string `json:"image"`
	Quantity     int    `json:"quantity"`
	Category     string `json:"category"`
}

type Store struct {
	mu      sync.Mutex
	items   []LineItem
	storage *storage.Store
	log     logrus.FieldLogger
}

func NewStore(st *storage.Store, log logrus.FieldLogger) *Store {
	return &Store{
		items:   []LineItem{},
		storage: st,
		log:     log.WithField("component", "cart"),
	}
}

// Load rehydrates the cart from storage. Absent or unparseable state yields
// an empty cart; that outcome is logged but never surfaced as an error.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.storage.Get(storageKey)
	if err != nil {
		s.log.WithError(err).Warn("cart rehydration failed, starting empty")
		return
	}
	if !found {
		return
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.WithError(err).Warn("stored cart unreadable, starting empty")
		return
	}
	if items == nil {
		items = []LineItem{}
	}
	s.items = items
	s.log.WithField("items", len(items)).Info("cart rehydrated")
}

// Add puts quantity units of the product in the cart. A quantity below one is
// rejected as a no-op. Adding a product already in the cart increments its
// quantity and leaves the original price snapshot untouched.
func (s *Store) Add(p catalog.Product, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity += quantity
			s.persist()
			return
		}
	}

	s.items = append(s.items, LineItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Price:        p.Price,
		PriceNumeric: p.PriceNumeric,
		Image:        p.Image,
		Quantity:     quantity,
		Category:     p.Category,
	})
	s.persist()
}

// Remove deletes the line item for the product id; no-op if absent.
func (s *Store) Remove(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
	s.persist()
}

// SetQuantity sets (not increments) the quantity for the product id.
// Zero or below removes the line item.
func (s *Store) SetQuantity(productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		s.persist()
		return
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persist()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []LineItem{}
	s.persist()
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of line-item quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the sum of snapshotted price times quantity over all lines.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, item := range s.items {
		total += item.PriceNumeric * int64(item.Quantity)
	}
	return total
}

func (s *Store) removeLocked(productID int) {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

// persist serializes the full collection under the cart key. Storage write
// failures are logged and swallowed; the in-memory cart stays authoritative.
func (s *Store) persist() {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.log.WithError(err).Error("cart serialization failed")
		return
	}
	if err := s.storage.Put(storageKey, raw); err != nil {
		s.log.WithError(err).Warn("cart persistence failed")
	}
}
