package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sessions owns one Store per cart session. Stores are hydrated on first
// use and dropped on Close or when idle; the slot keeps the data.
type Sessions struct {
	mu     sync.Mutex
	stores map[string]*Store
	slots  SlotFactory
	opts   []Option
}

func NewSessions(slots SlotFactory, opts ...Option) *Sessions {
	return &Sessions{
		stores: make(map[string]*Store),
		slots:  slots,
		opts:   opts,
	}
}

// Open returns the session's store, hydrating it from its slot if needed.
// A store that fails to hydrate is not kept, so the next call retries.
func (s *Sessions) Open(ctx context.Context, sessionID string) (*Store, error) {
	s.mu.Lock()
	if st, ok := s.stores[sessionID]; ok {
		// Touched under s.mu so a concurrent Sweep cannot drop it.
		st.touch()
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	opts := append([]Option{WithLogger(logrus.WithField("cart_session", sessionID))}, s.opts...)
	st, err := Open(ctx, s.slots(sessionID), opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.stores[sessionID]; ok {
		existing.touch()
		return existing, nil
	}
	s.stores[sessionID] = st
	return st, nil
}

// MaxQuantity is the per-item cap the sessions' stores enforce.
func (s *Sessions) MaxQuantity() int {
	st := &Store{maxQuantity: DefaultMaxQuantity}
	for _, opt := range s.opts {
		opt(st)
	}
	return st.maxQuantity
}

// Close tears down the session's in-memory store.
func (s *Sessions) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, sessionID)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Sweep drops stores unused for longer than idle and returns how many were dropped.
func (s *Sessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, st := range s.stores {
		if time.Since(st.LastUsed()) > idle {
			delete(s.stores, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle stores every interval until ctx is cancelled.
func (s *Sessions) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				logrus.WithField("dropped", n).Debug("Swept idle cart sessions")
			}
		}
	}
}
