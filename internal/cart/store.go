// Package cart holds a session's shopping cart: quantity-bounded line items
// mirrored to a persistent slot after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repuestos-py/marketplace/internal/models"
)

const (
	DefaultMaxQuantity = 10
	// Shipping is not charged yet.
	ShippingCost int64 = 0
)

var ErrQuantityOutOfRange = errors.New("quantity out of range")

// Item is a product snapshot plus the quantity in the cart.
type Item struct {
	models.Product
	Quantity int `json:"quantity"`
}

// Snapshot is the cart state handed to callers and observers.
type Snapshot struct {
	Items     []Item `json:"items"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
	Shipping  int64  `json:"shipping"`
	Total     int64  `json:"total"`
}

type Observer func(Snapshot)

type Store struct {
	mu           sync.Mutex
	items        []Item
	slot         Slot
	maxQuantity  int
	observers    map[int]Observer
	nextObserver int
	lastUsed     time.Time
	log          *logrus.Entry
}

type Option func(*Store)

func WithMaxQuantity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

func WithLogger(entry *logrus.Entry) Option {
	return func(s *Store) {
		s.log = entry
	}
}

// Open creates a store hydrated from slot. Contents that fail to parse are
// discarded and the cart starts empty. A failed read is returned as an error
// so the saved cart is never overwritten by an empty one.
func Open(ctx context.Context, slot Slot, opts ...Option) (*Store, error) {
	s := &Store{
		slot:        slot,
		maxQuantity: DefaultMaxQuantity,
		observers:   make(map[int]Observer),
		lastUsed:    time.Now(),
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := s.hydrate(ctx)
	if err != nil {
		return nil, err
	}
	s.items = items
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) ([]Item, error) {
	data, err := s.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart slot: %w", err)
	}

	items, err := s.decode(data)
	if err != nil {
		s.log.WithError(err).Warn("Discarding corrupt cart data")
		if err := s.slot.Delete(ctx); err != nil {
			s.log.WithError(err).Warn("Failed to delete corrupt cart data")
		}
		return nil, nil
	}
	return items, nil
}

func (s *Store) decode(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID == "" {
			return nil, errors.New("cart item without id")
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("duplicate cart item %s", item.ID)
		}
		if item.Quantity < 1 || item.Quantity > s.maxQuantity {
			return nil, fmt.Errorf("cart item %s has quantity %d", item.ID, item.Quantity)
		}
		seen[item.ID] = true
	}
	return items, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddItem increments the product's quantity, capped at the maximum,
// or appends it with quantity 1.
func (s *Store) AddItem(ctx context.Context, product models.Product) Snapshot {
	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		if s.items[i].Quantity < s.maxQuantity {
			s.items[i].Quantity++
		}
	} else {
		s.items = append(s.items, Item{Product: product, Quantity: 1})
	}
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// RemoveItem deletes the item if present.
func (s *Store) RemoveItem(ctx context.Context, id string) Snapshot {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// UpdateQuantity sets an item's quantity. Quantities outside [1, max] are
// rejected with ErrQuantityOutOfRange and change nothing; unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) (Snapshot, error) {
	s.mu.Lock()
	if quantity < 1 || quantity > s.maxQuantity {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrQuantityOutOfRange
	}

	i := s.indexOf(id)
	if i < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.items[i].Quantity = quantity
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

func (s *Store) Clear(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.items = nil
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.items)
}

func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.items)
}

func (s *Store) Total() int64 {
	return s.Subtotal() + ShippingCost
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) MaxQuantity() int {
	return s.maxQuantity
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// LastUsed reports when the store was last read or written.
func (s *Store) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// commit flushes the list to the slot. The in-memory list stays
// authoritative when the write fails. Callers hold s.mu.
func (s *Store) commit(ctx context.Context) Snapshot {
	data, err := json.Marshal(s.itemsForEncoding())
	if err == nil {
		err = s.slot.Write(ctx, data)
	}
	if err != nil {
		s.log.WithError(err).Warn("Failed to persist cart")
	}
	return s.snapshotLocked()
}

func (s *Store) itemsForEncoding() []Item {
	if s.items == nil {
		return []Item{}
	}
	return s.items
}

func (s *Store) snapshotLocked() Snapshot {
	s.lastUsed = time.Now()
	sub := subtotal(s.items)
	return Snapshot{
		Items:     s.copyItems(),
		ItemCount: itemCount(s.items),
		Subtotal:  sub,
		Shipping:  ShippingCost,
		Total:     sub + ShippingCost,
	}
}

func (s *Store) copyItems() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func itemCount(items []Item) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func subtotal(items []Item) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}
