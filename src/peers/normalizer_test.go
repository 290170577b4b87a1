package peers

import (
	"testing"

	"github.com/bobnet/bobsync/src/common"
)

func TestNormalizeBareHost(t *testing.T) {
	res, err := Normalize("1.2.3.4", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if len(res.Authenticated) != 1 || len(res.Simple) != 0 {
		t.Fatalf("expected 1 authenticated peer, got %+v", res)
	}

	p := res.Authenticated[0]
	if p.Host != "1.2.3.4" {
		t.Fatalf("host should be 1.2.3.4, not %s", p.Host)
	}
	if p.Port != DefaultAuthenticatedPort {
		t.Fatalf("port should be %d, not %d", DefaultAuthenticatedPort, p.Port)
	}
	if p.Passcode != NoPasscode {
		t.Fatalf("passcode should be the sentinel, not %s", p.Passcode)
	}
}

func TestNormalizeFullForm(t *testing.T) {
	res, err := Normalize("BM:5.6.7.8:21841:1-2-3-4", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	p := res.Authenticated[0]
	if p.Kind != Authenticated {
		t.Fatalf("kind should be Authenticated")
	}
	if p.Host != "5.6.7.8" || p.Port != 21841 || p.Passcode != "1-2-3-4" {
		t.Fatalf("full form should pass through unchanged, got %+v", p)
	}
}

func TestNormalizeSimpleKindDefaultPort(t *testing.T) {
	res, err := Normalize("bob:9.9.9.9", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if len(res.Simple) != 1 {
		t.Fatalf("expected 1 simple peer, got %+v", res)
	}

	p := res.Simple[0]
	if p.Host != "9.9.9.9" {
		t.Fatalf("host should be 9.9.9.9, not %s", p.Host)
	}
	if p.Port != DefaultSimplePort {
		t.Fatalf("port should be %d, not %d", DefaultSimplePort, p.Port)
	}
}

func TestNormalizeHostPort(t *testing.T) {
	res, err := Normalize("1.2.3.4:1337", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	p := res.Authenticated[0]
	if p.Kind != Authenticated || p.Port != 1337 || p.Passcode != NoPasscode {
		t.Fatalf("host:port should default to an authenticated peer, got %+v", p)
	}
}

func TestNormalizeSkipsInvalidTokens(t *testing.T) {
	res, err := Normalize("not-an-ip, 1.2.3.4", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("mixed input with one valid token should succeed: %v", err)
	}

	if res.Skipped != 1 {
		t.Fatalf("expected 1 skipped token, got %d", res.Skipped)
	}
	if res.Len() != 1 {
		t.Fatalf("expected 1 peer, got %d", res.Len())
	}
}

func TestNormalizeNoValidPeers(t *testing.T) {
	_, err := Normalize("not-an-ip, also:not:valid, 999.999.999.999", common.NewTestEntry(t))
	if err != ErrNoValidPeers {
		t.Fatalf("expected ErrNoValidPeers, got %v", err)
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	res, err := Normalize("  1.2.3.4 ,\t5.6.7.8:21841 ", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(res.Authenticated) != 2 {
		t.Fatalf("expected 2 peers, got %+v", res)
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	res, err := Normalize("2.2.2.2,1.1.1.1,3.3.3.3", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	want := []string{"2.2.2.2", "1.1.1.1", "3.3.3.3"}
	for i, p := range res.Authenticated {
		if p.Host != want[i] {
			t.Fatalf("peers[%d] host should be %s, not %s", i, want[i], p.Host)
		}
	}
}

func TestNormalizeRejectsBadPasscode(t *testing.T) {
	res, err := Normalize("BM:5.6.7.8:21841:abc-def, 1.2.3.4", common.NewTestEntry(t))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Skipped != 1 || res.Len() != 1 {
		t.Fatalf("malformed passcode should skip the token, got %+v", res)
	}
}

// Re-parsing a peer's canonical form must yield the same peer.
func TestRoundTripStable(t *testing.T) {
	inputs := []string{
		"1.2.3.4",
		"1.2.3.4:1337",
		"bob:9.9.9.9",
		"bob:9.9.9.9:31000",
		"BM:5.6.7.8:21841:1-2-3-4",
		"BM:5.6.7.8:21841",
	}

	for _, in := range inputs {
		first, err := parseToken(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}

		second, err := parseToken(first.String())
		if err != nil {
			t.Fatalf("re-parse %q: %v", first.String(), err)
		}

		if *first != *second {
			t.Fatalf("round trip of %q not stable: %+v != %+v", in, first, second)
		}

		if second.String() != first.String() {
			t.Fatalf("serialized form of %q not stable: %s != %s",
				in, first.String(), second.String())
		}
	}
}
