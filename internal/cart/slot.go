package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StorageKey is the slot key the cart is mirrored under.
const StorageKey = "shopping_cart"

var ErrSlotEmpty = errors.New("cart slot is empty")

// Slot is a single string-keyed persistent entry holding one cart.
type Slot interface {
	// Read returns ErrSlotEmpty when nothing has been stored yet.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// SlotFactory returns the slot backing a session's cart.
type SlotFactory func(sessionID string) Slot

// SlotKey namespaces the storage key per session.
func SlotKey(sessionID string) string {
	if sessionID == "" {
		return StorageKey
	}
	return StorageKey + ":" + sessionID
}

// MemoryBackend keeps slots in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

func (b *MemoryBackend) Slots() SlotFactory {
	return func(sessionID string) Slot {
		return &memorySlot{backend: b, key: SlotKey(sessionID)}
	}
}

// Get returns the raw entry stored under key.
func (b *MemoryBackend) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.entries[key]
	return data, ok
}

// Put stores a raw entry under key.
func (b *MemoryBackend) Put(key string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = append([]byte(nil), data...)
}

type memorySlot struct {
	backend *MemoryBackend
	key     string
}

func (s *memorySlot) Read(ctx context.Context) ([]byte, error) {
	data, ok := s.backend.Get(s.key)
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (s *memorySlot) Write(ctx context.Context, data []byte) error {
	s.backend.Put(s.key, data)
	return nil
}

func (s *memorySlot) Delete(ctx context.Context) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.entries, s.key)
	return nil
}

// RedisSlots stores each session's cart under its own Redis key.
// A zero ttl keeps entries until they are deleted.
func RedisSlots(client redis.Cmdable, ttl time.Duration) SlotFactory {
	return func(sessionID string) Slot {
		return &redisSlot{client: client, key: SlotKey(sessionID), ttl: ttl}
	}
}

type redisSlot struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func (s *redisSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	return data, err
}

func (s *redisSlot) Write(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *redisSlot) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
