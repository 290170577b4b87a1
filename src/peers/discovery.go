package peers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobnet/bobsync/src/backoff"
	"github.com/sirupsen/logrus"
)

// discoveryResponse is the JSON shape of the peer-discovery endpoint: two
// arrays of IPv4 literals, one for full data-serving Bob nodes and one for
// lightweight Lite relays.
type discoveryResponse struct {
	FullNodes []string `json:"fullNodes"`
	Relays    []string `json:"relays"`
}

// Discovery fetches peer IPs from a discovery endpoint and feeds them through
// the normalizer.
type Discovery struct {
	url    string
	client *http.Client
	retry  *backoff.Policy
	logger *logrus.Entry
}

// NewDiscovery creates a Discovery against the given endpoint. Every call is
// bounded by timeout and retried according to the policy.
func NewDiscovery(url string, timeout time.Duration, retry *backoff.Policy, logger *logrus.Entry) *Discovery {
	return &Discovery{
		url:    url,
		client: &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger,
	}
}

// Fetch retrieves the discovery lists, maps them into the token grammar
// (fullNodes as authenticated peers on the well-known port, relays as simple
// peers) and normalizes them.
func (d *Discovery) Fetch(ctx context.Context) (*Result, error) {
	var dr discoveryResponse

	err := d.retry.Do(ctx, func() error {
		return d.fetchOnce(ctx, &dr)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching peers from %s: %v", d.url, err)
	}

	tokens := make([]string, 0, len(dr.FullNodes)+len(dr.Relays))
	for _, ip := range dr.FullNodes {
		// the bare KIND:host form is reserved for simple peers, so
		// authenticated tokens carry the default port explicitly
		tokens = append(tokens,
			fmt.Sprintf("%s:%s:%d", AuthenticatedToken, ip, DefaultAuthenticatedPort))
	}
	for _, ip := range dr.Relays {
		tokens = append(tokens, SimpleToken+":"+ip)
	}

	return Normalize(strings.Join(tokens, ","), d.logger)
}

func (d *Discovery) fetchOnce(ctx context.Context, dr *discoveryResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discovery endpoint returned %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(dr)
}
