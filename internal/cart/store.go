package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Store is the single source of truth for one buyer's in-progress cart.
// It enforces the single-seller rule, persists on every mutation, and
// refuses to serve reads or writes until the initial load has completed
// so an empty in-memory default can never clobber stored data.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	ready   bool
	storage Storage
	logg    *logger.Logger
}

// NewStore builds a cart store over the provided storage. Load must be
// called before any other operation.
func NewStore(storage Storage, logg *logger.Logger) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	return &Store{
		storage: storage,
		logg:    logg,
	}, nil
}

// Load hydrates the cart from durable storage. A missing or corrupt
// payload yields an empty cart; corruption is logged, never surfaced.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	s.items = nil
	if len(data) > 0 {
		var items []LineItem
		if err := json.Unmarshal(data, &items); err != nil {
			if s.logg != nil {
				s.logg.Warn(ctx, "stored cart unreadable, starting empty")
			}
		} else {
			s.items = sanitize(items)
		}
	}
	s.ready = true
	return nil
}

// Ready reports whether the initial load has completed.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Add inserts a candidate line or increments an existing one. Adding a
// product from a different seller than the cart's current owner is
// rejected without mutating anything.
func (s *Store) Add(ctx context.Context, candidate Candidate) (AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return AddResult{}, pkgerrors.New(pkgerrors.CodeNotReady, "cart not loaded yet")
	}

	if len(s.items) > 0 {
		current := s.items[0].Seller
		if current != candidate.Seller {
			return AddResult{
				Success: false,
				Message: fmt.Sprintf(
					"Your cart contains items from %s. Clear your cart or complete that order before adding items from %s.",
					current, candidate.Seller,
				),
			}, nil
		}
	}

	found := false
	for i := range s.items {
		if s.items[i].ID == candidate.ID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, LineItem{
			ID:            candidate.ID,
			Name:          candidate.Name,
			Price:         candidate.Price,
			OriginalPrice: candidate.OriginalPrice,
			Image:         candidate.Image,
			Seller:        candidate.Seller,
			Quantity:      1,
			InStock:       candidate.InStock,
			FreeShipping:  candidate.FreeShipping,
		})
	}

	if err := s.persist(ctx); err != nil {
		return AddResult{}, err
	}
	return AddResult{Success: true}, nil
}

// UpdateQuantity sets a line's quantity to an absolute value. Zero or
// below removes the line. An unknown id is ignored but still persisted.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return pkgerrors.New(pkgerrors.CodeNotReady, "cart not loaded yet")
	}

	if quantity <= 0 {
		s.removeLocked(id)
	} else {
		for i := range s.items {
			if s.items[i].ID == id {
				s.items[i].Quantity = quantity
				break
			}
		}
	}
	return s.persist(ctx)
}

// Remove deletes the line with the matching id, if present.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return pkgerrors.New(pkgerrors.CodeNotReady, "cart not loaded yet")
	}

	s.removeLocked(id)
	return s.persist(ctx)
}

// Clear empties the cart and its durable copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return pkgerrors.New(pkgerrors.CodeNotReady, "cart not loaded yet")
	}

	s.items = nil
	if err := s.storage.Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Items returns a copy of the current lines.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.items...)
}

// Total is the sum of price times quantity over all lines, computed
// with decimal arithmetic so money sums do not drift.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// Count is the sum of quantities over all lines, not the line count.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// CurrentSeller returns the cart's owning seller, or "" when empty.
func (s *Store) CurrentSeller() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return ""
	}
	return s.items[0].Seller
}

func (s *Store) removeLocked(id string) {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.Save(ctx, data); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

// sanitize drops malformed lines from a stored cart: quantities are
// clamped to at least 1 and id-less lines are discarded.
func sanitize(items []LineItem) []LineItem {
	cleaned := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		cleaned = append(cleaned, item)
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
