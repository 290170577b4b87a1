package epoch

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/bobnet/bobsync/src/common"
)

func newTestCache(t *testing.T) *Cache {
	dir, err := ioutil.TempDir("", "bobsync_cache")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	if _, ok := cache.Get(6); ok {
		t.Fatalf("empty cache should miss")
	}

	rec := &Record{Epoch: 6, Tick: 150, Revision: "abc123"}
	if err := cache.Set(rec); err != nil {
		t.Fatalf("err: %v", err)
	}

	got, ok := cache.Get(6)
	if !ok {
		t.Fatalf("cache should hit after Set")
	}
	if *got != *rec {
		t.Fatalf("cached record should be %+v, not %+v", rec, got)
	}
}

func TestReconcilerUsesCache(t *testing.T) {
	cache := newTestCache(t)

	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")
	h := history765()

	r := NewReconciler(h, 10, false, cache, common.NewTestEntry(t))

	// first run populates the cache from history
	m, err := r.Reconcile(context.Background(), path, 6)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 6 || m.Tick != 150 {
		t.Fatalf("markers should be (6, 150), not (%d, %d)", m.Epoch, m.Tick)
	}

	// roll the tree forward again and reconcile back; the history must not
	// be read this time
	if err := PatchMarkers(path, Markers{Epoch: 7, Tick: 200}); err != nil {
		t.Fatalf("err: %v", err)
	}
	reads := h.reads

	m, err = r.Reconcile(context.Background(), path, 6)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 6 || m.Tick != 150 {
		t.Fatalf("markers should be (6, 150), not (%d, %d)", m.Epoch, m.Tick)
	}
	if h.reads != reads {
		t.Fatalf("second reconciliation should be served from the cache")
	}
}
