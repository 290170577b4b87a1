package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bobnet/bobsync/src/backoff"
)

// archivePattern matches epoch-indexed archive names, e.g. "ep142.zip".
var archivePattern = regexp.MustCompile(`^ep([0-9]+)\.`)

// index is the JSON shape of the store listing.
type index struct {
	Archives []string `json:"archives"`
}

// Store is a client for the remote snapshot storage: epoch-indexed archives
// behind a base URL, with a JSON index listing the available archive names.
type Store struct {
	baseURL string
	client  *http.Client
	retry   *backoff.Policy
}

// NewStore ...
func NewStore(baseURL string, timeout time.Duration, retry *backoff.Policy) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		retry:   retry,
	}
}

// LatestEpoch lists the available archives and returns the highest epoch
// number among them. This is the store's notion of the current epoch.
func (s *Store) LatestEpoch(ctx context.Context) (uint32, error) {
	var idx index

	err := s.retry.Do(ctx, func() error {
		return s.fetchIndex(ctx, &idx)
	})
	if err != nil {
		return 0, err
	}

	var latest uint32
	found := false

	for _, name := range idx.Archives {
		m := archivePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		epoch, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}

		if !found || uint32(epoch) > latest {
			latest = uint32(epoch)
			found = true
		}
	}

	if !found {
		return 0, fmt.Errorf("no epoch-indexed archives at %s", s.baseURL)
	}

	return latest, nil
}

// ArchiveURL returns the address of the archive for epoch.
func (s *Store) ArchiveURL(epoch uint32) string {
	return fmt.Sprintf("%s/ep%d.zip", s.baseURL, epoch)
}

// ArchiveSize probes the archive for epoch with a HEAD request and returns
// its size in bytes, or 0 when the total cannot be determined. The total is
// optional everywhere downstream, so a failed probe is not an error.
func (s *Store) ArchiveSize(ctx context.Context, epoch uint32) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.ArchiveURL(epoch), nil)
	if err != nil {
		return 0
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.ContentLength < 0 {
		return 0
	}

	return resp.ContentLength
}

func (s *Store) fetchIndex(ctx context.Context, idx *index) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/index.json", nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("snapshot index returned %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(idx)
}
