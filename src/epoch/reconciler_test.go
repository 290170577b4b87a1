package epoch

import (
	"context"
	"fmt"
	"testing"

	"github.com/bobnet/bobsync/src/common"
)

// fakeHistory implements History over a synthetic list of revisions, most
// recent first.
type fakeHistory struct {
	revs    []string
	content map[string][]byte
	reads   int
}

func (f *fakeHistory) Revisions(ctx context.Context, limit int) ([]string, error) {
	if limit < len(f.revs) {
		return f.revs[:limit], nil
	}
	return f.revs, nil
}

func (f *fakeHistory) FileAt(ctx context.Context, rev string) ([]byte, error) {
	f.reads++
	c, ok := f.content[rev]
	if !ok {
		return nil, fmt.Errorf("unknown revision %s", rev)
	}
	return c, nil
}

// newFakeHistory builds a history from (epoch, tick) pairs, most recent
// first.
func newFakeHistory(pairs [][2]uint32) *fakeHistory {
	f := &fakeHistory{content: map[string][]byte{}}
	for i, p := range pairs {
		rev := fmt.Sprintf("rev%d", i)
		f.revs = append(f.revs, rev)
		f.content[rev] = []byte(fmt.Sprintf("#define EPOCH %d\n#define TICK %d\n", p[0], p[1]))
	}
	return f
}

func history765() *fakeHistory {
	return newFakeHistory([][2]uint32{{7, 200}, {6, 150}, {5, 100}})
}

func TestReconcileNoOp(t *testing.T) {
	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")
	h := history765()

	r := NewReconciler(h, 10, false, nil, common.NewTestEntry(t))

	m, err := r.Reconcile(context.Background(), path, 7)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 7 || m.Tick != 200 {
		t.Fatalf("markers should be unchanged, got (%d, %d)", m.Epoch, m.Tick)
	}
	if h.reads != 0 {
		t.Fatalf("matching head should not touch the history, read %d revisions", h.reads)
	}
}

func TestReconcileFindsHistoricalEpoch(t *testing.T) {
	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")

	r := NewReconciler(history765(), 10, false, nil, common.NewTestEntry(t))

	m, err := r.Reconcile(context.Background(), path, 6)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 6 || m.Tick != 150 {
		t.Fatalf("markers should be (6, 150), not (%d, %d)", m.Epoch, m.Tick)
	}

	// the working tree was patched in place
	onDisk, err := ReadMarkers(path)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if onDisk != m {
		t.Fatalf("on-disk markers %+v should match returned markers %+v", onDisk, m)
	}
}

func TestReconcileEpochNotFound(t *testing.T) {
	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")

	r := NewReconciler(history765(), 10, false, nil, common.NewTestEntry(t))

	m, err := r.Reconcile(context.Background(), path, 9)
	if err != nil {
		t.Fatalf("a miss should degrade, not fail: %v", err)
	}

	// the epoch is NOT silently forced to 9, and the tick is untouched
	if m.Epoch != 7 || m.Tick != 200 {
		t.Fatalf("markers should be unchanged on a miss, got (%d, %d)", m.Epoch, m.Tick)
	}

	onDisk, _ := ReadMarkers(path)
	if onDisk != m {
		t.Fatalf("a miss must not touch the working tree")
	}
}

func TestReconcileStrict(t *testing.T) {
	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")

	r := NewReconciler(history765(), 10, true, nil, common.NewTestEntry(t))

	_, err := r.Reconcile(context.Background(), path, 9)
	if err == nil {
		t.Fatalf("strict mode should fail on a miss")
	}
	if _, ok := err.(ErrEpochNotFound); !ok {
		t.Fatalf("expected ErrEpochNotFound, got %v", err)
	}
}

func TestReconcileBoundedSearch(t *testing.T) {
	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")
	h := history765()

	// epoch 5 sits at depth 3, beyond the bound of 2
	r := NewReconciler(h, 2, false, nil, common.NewTestEntry(t))

	m, err := r.Reconcile(context.Background(), path, 5)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 7 || m.Tick != 200 {
		t.Fatalf("bounded search should miss, markers got (%d, %d)", m.Epoch, m.Tick)
	}
	if h.reads > 2 {
		t.Fatalf("search should be bounded to 2 revisions, read %d", h.reads)
	}
}

func TestReconcileSkipsUnreadableRevisions(t *testing.T) {
	path := writeFixture(t, "#define EPOCH 7\n#define TICK 200\n")

	h := history765()
	delete(h.content, "rev0") // head revision unreadable

	r := NewReconciler(h, 10, false, nil, common.NewTestEntry(t))

	m, err := r.Reconcile(context.Background(), path, 6)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 6 || m.Tick != 150 {
		t.Fatalf("markers should be (6, 150), not (%d, %d)", m.Epoch, m.Tick)
	}
}
