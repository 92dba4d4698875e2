package cache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// countingParser wraps parser.Parse and counts invocations.
func countingParser(calls *atomic.Int64) ParseFunc {
	return func(raw string) *models.ParsedDocument {
		calls.Add(1)
		return parser.Parse(raw)
	}
}

func newTestCache(t *testing.T, calls *atomic.Int64, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now), WithParseFunc(countingParser(calls))}, opts...)
	return New(opts...), clock
}

func TestParse_OncePerContent(t *testing.T) {
	var calls atomic.Int64
	c, _ := newTestCache(t, &calls)

	x := "---\ntitle: X\n---\n# X\n\nbody"
	first, err := c.Parse("post-1", x)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Parse("post-1", x)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("parse calls = %d, want 1", calls.Load())
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached result differs")
	}

	third, err := c.Parse("post-1", x+" changed")
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("parse calls = %d, want 2 after content change", calls.Load())
	}
	if reflect.DeepEqual(first, third) {
		t.Error("stale document returned for changed content")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 2 || st.Size != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestParse_EmptyID(t *testing.T) {
	c := New()
	_, err := c.Parse("", "# x")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestParse_TTLExpiry(t *testing.T) {
	var calls atomic.Int64
	c, clock := newTestCache(t, &calls, WithTTL(time.Minute))

	c.Parse("a", "text")
	clock.Advance(59 * time.Second)
	c.Parse("a", "text")
	if calls.Load() != 1 {
		t.Fatalf("calls = %d before expiry, want 1", calls.Load())
	}
	clock.Advance(time.Second)
	c.Parse("a", "text")
	if calls.Load() != 2 {
		t.Errorf("calls = %d after expiry, want 2", calls.Load())
	}
}

func TestParse_EvictsOldestFifth(t *testing.T) {
	var calls atomic.Int64
	c, clock := newTestCache(t, &calls, WithMaxEntries(10))

	for i := range 10 {
		c.Parse(fmt.Sprintf("p%d", i), "body")
		clock.Advance(time.Second)
	}
	c.Parse("new", "body")

	st := c.Stats()
	if st.Size != 9 {
		t.Fatalf("size = %d, want 9", st.Size)
	}
	ids := map[string]bool{}
	for _, e := range st.Entries {
		ids[e.ID] = true
	}
	if ids["p0"] || ids["p1"] {
		t.Error("oldest entries were not evicted")
	}
	if !ids["p2"] || !ids["new"] {
		t.Errorf("entries = %v", ids)
	}
}

func TestParse_ReplacingDoesNotEvict(t *testing.T) {
	var calls atomic.Int64
	c, _ := newTestCache(t, &calls, WithMaxEntries(2))
	c.Parse("a", "1")
	c.Parse("b", "1")
	c.Parse("a", "2")
	if st := c.Stats(); st.Size != 2 {
		t.Errorf("size = %d, want 2", st.Size)
	}
}

func TestInvalidateAndClear(t *testing.T) {
	var calls atomic.Int64
	c, _ := newTestCache(t, &calls)
	c.Parse("a", "x")
	c.Invalidate("a")
	c.Parse("a", "x")
	if calls.Load() != 2 {
		t.Errorf("calls = %d after invalidate, want 2", calls.Load())
	}
	c.Clear()
	if st := c.Stats(); st.Size != 0 || st.Hits != 0 || st.Misses != 0 {
		t.Errorf("stats after clear = %+v", st)
	}
}

func TestParse_Concurrent(t *testing.T) {
	var calls atomic.Int64
	c, _ := newTestCache(t, &calls, WithMaxEntries(5))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("p%d", i%8)
			if _, err := c.Parse(id, "# "+id); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if st := c.Stats(); st.Size > 5 {
		t.Errorf("size = %d exceeds capacity", st.Size)
	}
}

func TestPreload(t *testing.T) {
	var calls atomic.Int64
	c, _ := newTestCache(t, &calls)

	docs := map[string]string{"a": "# A", "b": "# B"}
	load := func(_ context.Context, id string) (string, error) {
		raw, ok := docs[id]
		if !ok {
			return "", apperr.ErrNotFound
		}
		return raw, nil
	}
	if err := c.Preload(context.Background(), []string{"a", "b", "missing"}, load); err != nil {
		t.Fatal(err)
	}
	if st := c.Stats(); st.Size != 2 {
		t.Errorf("size = %d, want 2", st.Size)
	}
	c.Parse("a", "# A")
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestPreload_Cancelled(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Preload(ctx, []string{"a"}, func(context.Context, string) (string, error) { return "x", nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
