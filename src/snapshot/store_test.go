package snapshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bobnet/bobsync/src/backoff"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStore(srv.URL, time.Second, backoff.New(1, 0))
}

func TestLatestEpoch(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"archives":["ep140.zip","ep142.zip","ep141.zip","readme.txt"]}`))
	})

	latest, err := store.LatestEpoch(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if latest != 142 {
		t.Fatalf("latest epoch should be 142, not %d", latest)
	}
}

func TestLatestEpochEmpty(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"archives":["readme.txt"]}`))
	})

	if _, err := store.LatestEpoch(context.Background()); err == nil {
		t.Fatalf("a store without epoch archives should generate an error")
	}
}

func TestArchiveSize(t *testing.T) {
	const size = 1234567

	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead || r.URL.Path != "/ep142.zip" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(size))
	})

	if got := store.ArchiveSize(context.Background(), 142); got != size {
		t.Fatalf("size should be %d, not %d", size, got)
	}

	// a failed probe is not an error, the total is simply unknown
	if got := store.ArchiveSize(context.Background(), 999); got != 0 {
		t.Fatalf("failed probe should report 0, not %d", got)
	}
}
