package peers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoValidPeers is returned by Normalize when no token in the input could be
// turned into a peer. A node cannot start without at least one entry point, so
// this is the one fatal outcome of normalization.
var ErrNoValidPeers = errors.New("no valid peers in input")

// Result holds the outcome of normalizing a raw peer string. Token order is
// preserved within each list.
type Result struct {
	Authenticated []*Peer `json:"authenticated"`
	Simple        []*Peer `json:"simple"`
	Skipped       int     `json:"skipped"`
}

// Len returns the combined number of peers in both lists.
func (r *Result) Len() int {
	return len(r.Authenticated) + len(r.Simple)
}

// All returns both lists concatenated, authenticated first.
func (r *Result) All() []*Peer {
	all := make([]*Peer, 0, r.Len())
	all = append(all, r.Authenticated...)
	all = append(all, r.Simple...)
	return all
}

// Normalize parses a comma-separated string of peer tokens into canonical
// peer lists. Tokens that match no form of the grammar are skipped with a
// warning; only an empty combined result is an error.
func Normalize(raw string, logger *logrus.Entry) (*Result, error) {
	res := &Result{}

	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		peer, err := parseToken(tok)
		if err != nil {
			res.Skipped++
			logger.WithField("token", tok).WithError(err).Warn("Skipping invalid peer token")
			continue
		}

		if peer.Kind == Simple {
			res.Simple = append(res.Simple, peer)
		} else {
			res.Authenticated = append(res.Authenticated, peer)
		}
	}

	if res.Len() == 0 {
		return nil, ErrNoValidPeers
	}

	return res, nil
}

// parseToken tries each form of the peer grammar in priority order and
// returns the first match.
//
//  KIND:host:port:passcode
//  KIND:host:port
//  KIND:host        (Simple kind only)
//  host:port        (Authenticated assumed)
//  host             (Authenticated assumed, default port)
func parseToken(tok string) (*Peer, error) {
	parts := strings.Split(tok, ":")

	if kind, ok := kindFromToken(parts[0]); ok {
		switch len(parts) {
		case 4:
			return newPeer(kind, parts[1], parts[2], parts[3])
		case 3:
			return newPeer(kind, parts[1], parts[2], defaultPasscode(kind))
		case 2:
			if kind != Simple {
				return nil, errors.New("port required for authenticated peer")
			}
			return newPeer(kind, parts[1], strconv.Itoa(kind.DefaultPort()), "")
		}
		return nil, errors.New("malformed qualified peer token")
	}

	switch len(parts) {
	case 2:
		return newPeer(Authenticated, parts[0], parts[1], NoPasscode)
	case 1:
		return newPeer(Authenticated, parts[0],
			strconv.Itoa(Authenticated.DefaultPort()), NoPasscode)
	}
	return nil, errors.New("malformed peer token")
}

// defaultPasscode returns the passcode used when a qualified token omits one.
// Simple peers never carry a passcode.
func defaultPasscode(kind Kind) string {
	if kind == Simple {
		return ""
	}
	return NoPasscode
}

// newPeer validates the raw fields and assembles an immutable Peer.
func newPeer(kind Kind, host, portStr, passcode string) (*Peer, error) {
	if !validHost(host) {
		return nil, errors.New("host is not an IPv4 literal")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || !validPort(port) {
		return nil, errors.New("port out of range")
	}

	if passcode != "" && !validPasscode(passcode) {
		return nil, errors.New("malformed passcode")
	}

	return &Peer{
		Kind:     kind,
		Host:     host,
		Port:     port,
		Passcode: passcode,
	}, nil
}
