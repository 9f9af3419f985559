package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repuestos-py/marketplace/internal/models"
)

func product(id string, price int64) models.Product {
	return models.Product{
		BaseModel: models.BaseModel{ID: id},
		Name:      "Pieza " + id,
		Price:     price,
		Brand:     "Toyota",
		Condition: models.ConditionUsed,
		Images:    []string{"https://img.example/" + id + ".jpg"},
		Status:    models.ProductStatusPublished,
	}
}

func mustOpen(t *testing.T, slot Slot, opts ...Option) *Store {
	t.Helper()
	st, err := Open(context.Background(), slot, opts...)
	require.NoError(t, err)
	return st
}

func newStore(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	return mustOpen(t, backend.Slots()("s1")), backend
}

func TestAddItemQuantityIsCapped(t *testing.T) {
	ctx := context.Background()

	for calls := 1; calls <= 15; calls++ {
		st, _ := newStore(t)
		for i := 0; i < calls; i++ {
			st.AddItem(ctx, product("p1", 1000))
		}

		items := st.Items()
		require.Len(t, items, 1)
		want := calls
		if want > DefaultMaxQuantity {
			want = DefaultMaxQuantity
		}
		assert.Equal(t, want, items[0].Quantity, "after %d adds", calls)
	}
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	st.AddItem(ctx, product("c", 1))
	st.AddItem(ctx, product("a", 1))
	st.AddItem(ctx, product("b", 1))
	st.AddItem(ctx, product("a", 1))

	items := st.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestUpdateQuantityOutOfRangeIsNoop(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)
	st.AddItem(ctx, product("p1", 1000))
	st.AddItem(ctx, product("p1", 1000))

	for _, q := range []int{-3, 0, 11, 15, 1000} {
		snap, err := st.UpdateQuantity(ctx, "p1", q)
		assert.ErrorIs(t, err, ErrQuantityOutOfRange)
		assert.Equal(t, 2, snap.Items[0].Quantity)
	}

	snap, err := st.UpdateQuantity(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Items[0].Quantity)

	snap, err = st.UpdateQuantity(ctx, "missing", 3)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
}

func TestRemoveAbsentItemIsNoop(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)
	st.AddItem(ctx, product("p1", 1000))

	snap := st.RemoveItem(ctx, "nope")
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 1, st.ItemCount())
}

func TestItemCountMatchesQuantities(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	check := func() {
		sum := 0
		for _, item := range st.Items() {
			sum += item.Quantity
		}
		assert.Equal(t, sum, st.ItemCount())
	}

	st.AddItem(ctx, product("a", 100))
	check()
	st.AddItem(ctx, product("b", 200))
	check()
	st.AddItem(ctx, product("a", 100))
	check()
	_, _ = st.UpdateQuantity(ctx, "b", 7)
	check()
	_, _ = st.UpdateQuantity(ctx, "b", 0)
	check()
	st.RemoveItem(ctx, "a")
	check()
	st.Clear(ctx)
	check()
	assert.Equal(t, 0, st.ItemCount())
}

func TestCartScenario(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)
	assert.Equal(t, 0, st.ItemCount())

	p1 := product("p1", 100000)
	snap := st.AddItem(ctx, p1)
	assert.Equal(t, 1, snap.ItemCount)
	assert.Equal(t, int64(100000), snap.Total)

	snap = st.AddItem(ctx, p1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, int64(200000), snap.Total)

	snap, err := st.UpdateQuantity(ctx, "p1", 15)
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)
	assert.Equal(t, 2, snap.Items[0].Quantity)

	snap = st.RemoveItem(ctx, "p1")
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.ItemCount)
	assert.Equal(t, int64(0), st.Total())
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	slots := backend.Slots()

	first := mustOpen(t, slots("s1"))
	first.AddItem(ctx, product("p1", 250000))
	first.AddItem(ctx, product("p2", 90000))
	first.AddItem(ctx, product("p1", 250000))

	raw, ok := backend.Get(SlotKey("s1"))
	require.True(t, ok)
	assert.Contains(t, string(raw), `"quantity":2`)

	second := mustOpen(t, slots("s1"))
	assert.Equal(t, first.Items(), second.Items())
	assert.Equal(t, 3, second.ItemCount())
	assert.Equal(t, int64(590000), second.Subtotal())
}

func TestCorruptSlotIsDiscarded(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":       "{{{",
		"wrong shape":    `{"items":1}`,
		"bad quantity":   `[{"id":"p1","price":10,"quantity":42}]`,
		"zero quantity":  `[{"id":"p1","price":10,"quantity":0}]`,
		"missing id":     `[{"price":10,"quantity":1}]`,
		"duplicate item": `[{"id":"p1","quantity":1},{"id":"p1","quantity":2}]`,
	} {
		t.Run(name, func(t *testing.T) {
			backend := NewMemoryBackend()
			backend.Put(SlotKey("s1"), []byte(payload))

			st := mustOpen(t, backend.Slots()("s1"))
			assert.Empty(t, st.Items())
			assert.Equal(t, 0, st.ItemCount())

			_, ok := backend.Get(SlotKey("s1"))
			assert.False(t, ok, "corrupt entry should be deleted")
		})
	}
}

func TestClearPersistsEmptyList(t *testing.T) {
	ctx := context.Background()
	st, backend := newStore(t)
	st.AddItem(ctx, product("p1", 1))
	st.Clear(ctx)

	raw, ok := backend.Get(SlotKey("s1"))
	require.True(t, ok)
	assert.JSONEq(t, "[]", string(raw))
}

type failingSlot struct {
	readErr  error
	writeErr error
	writes   int
}

func (f *failingSlot) Read(ctx context.Context) ([]byte, error) { return nil, f.readErr }
func (f *failingSlot) Write(ctx context.Context, data []byte) error {
	f.writes++
	return f.writeErr
}
func (f *failingSlot) Delete(ctx context.Context) error { return nil }

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{readErr: ErrSlotEmpty, writeErr: errors.New("connection refused")}
	st := mustOpen(t, slot)

	snap := st.AddItem(ctx, product("p1", 5000))
	assert.Equal(t, 1, snap.ItemCount)
	assert.Equal(t, 1, slot.writes)
}

// flakySlot fails the first reads, then behaves like the wrapped slot.
type flakySlot struct {
	Slot
	failReads int
}

func (f *flakySlot) Read(ctx context.Context) ([]byte, error) {
	if f.failReads > 0 {
		f.failReads--
		return nil, errors.New("i/o timeout")
	}
	return f.Slot.Read(ctx)
}

func TestReadFailureKeepsSavedCart(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	saved := mustOpen(t, backend.Slots()("s1"))
	for _, id := range []string{"p1", "p2", "p3"} {
		saved.AddItem(ctx, product(id, 1000))
	}

	slot := &flakySlot{Slot: backend.Slots()("s1"), failReads: 1}
	sessions := NewSessions(func(string) Slot { return slot })

	_, err := sessions.Open(ctx, "s1")
	require.Error(t, err)
	assert.Equal(t, 0, sessions.Len(), "failed hydration is not cached")

	raw, ok := backend.Get(SlotKey("s1"))
	require.True(t, ok)
	assert.Contains(t, string(raw), `"p3"`)

	st, err := sessions.Open(ctx, "s1")
	require.NoError(t, err)
	snap := st.AddItem(ctx, product("p4", 1000))
	assert.Len(t, snap.Items, 4)

	reloaded := mustOpen(t, backend.Slots()("s1"))
	assert.Equal(t, 4, reloaded.ItemCount())
}

func TestWithMaxQuantity(t *testing.T) {
	ctx := context.Background()
	st := mustOpen(t, NewMemoryBackend().Slots()("s"), WithMaxQuantity(3))

	for i := 0; i < 5; i++ {
		st.AddItem(ctx, product("p1", 1))
	}
	assert.Equal(t, 3, st.ItemCount())

	_, err := st.UpdateQuantity(ctx, "p1", 4)
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore(t)

	var counts []int
	unsubscribe := st.Subscribe(func(s Snapshot) {
		counts = append(counts, s.ItemCount)
	})

	st.AddItem(ctx, product("p1", 1))
	st.AddItem(ctx, product("p1", 1))
	st.RemoveItem(ctx, "missing")
	_, _ = st.UpdateQuantity(ctx, "p1", 99)
	unsubscribe()
	st.Clear(ctx)

	assert.Equal(t, []int{1, 2}, counts)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	sessions := NewSessions(backend.Slots())
	open := func(id string) *Store {
		st, err := sessions.Open(ctx, id)
		require.NoError(t, err)
		return st
	}

	a := open("a")
	assert.Same(t, a, open("a"))

	a.AddItem(ctx, product("p1", 1))
	b := open("b")
	assert.Empty(t, b.Items())
	assert.Equal(t, 2, sessions.Len())

	sessions.Close("a")
	reopened := open("a")
	assert.NotSame(t, a, reopened)
	assert.Equal(t, 1, reopened.ItemCount())

	assert.Equal(t, 0, sessions.Sweep(time.Hour))
	assert.Equal(t, 2, sessions.Sweep(-time.Second))
	assert.Equal(t, 0, sessions.Len())
}

func TestOpenKeepsStoreFromSweep(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(NewMemoryBackend().Slots(), WithMaxQuantity(4))
	assert.Equal(t, 4, sessions.MaxQuantity())

	st, err := sessions.Open(ctx, "a")
	require.NoError(t, err)
	st.mu.Lock()
	st.lastUsed = time.Now().Add(-time.Hour)
	st.mu.Unlock()

	again, err := sessions.Open(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, st, again)
	assert.Equal(t, 0, sessions.Sweep(time.Minute))
	assert.Equal(t, 1, sessions.Len())
}
