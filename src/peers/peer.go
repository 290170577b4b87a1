package peers

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Kind distinguishes the two sorts of peers a node can connect to.
type Kind int

const (
	// Authenticated peers are full, data-serving Bob nodes. Connections to
	// them carry a passcode.
	Authenticated Kind = iota
	// Simple peers are lightweight Lite relays, addressed without a passcode.
	Simple
)

// Canonical kind tokens used in the peer string grammar.
const (
	AuthenticatedToken = "BM"
	SimpleToken        = "bob"
)

// Well-known default ports.
const (
	DefaultAuthenticatedPort = 21841
	DefaultSimplePort        = 21842
)

// NoPasscode is the sentinel used when a peer token carries no passcode.
const NoPasscode = "0-0-0-0"

var passcodePattern = regexp.MustCompile(`^[0-9]+-[0-9]+-[0-9]+-[0-9]+$`)

// String ...
func (k Kind) String() string {
	switch k {
	case Authenticated:
		return AuthenticatedToken
	case Simple:
		return SimpleToken
	default:
		return "Unknown"
	}
}

// kindFromToken maps a raw kind prefix to a Kind. Matching is
// case-insensitive.
func kindFromToken(tok string) (Kind, bool) {
	switch strings.ToLower(tok) {
	case strings.ToLower(AuthenticatedToken):
		return Authenticated, true
	case strings.ToLower(SimpleToken):
		return Simple, true
	}
	return 0, false
}

// MarshalJSON encodes the kind as its canonical token.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a canonical kind token.
func (k *Kind) UnmarshalJSON(data []byte) error {
	tok := strings.Trim(string(data), `"`)
	kind, ok := kindFromToken(tok)
	if !ok {
		return fmt.Errorf("unknown peer kind %q", tok)
	}
	*k = kind
	return nil
}

// DefaultPort returns the well-known port for the kind.
func (k Kind) DefaultPort() int {
	if k == Simple {
		return DefaultSimplePort
	}
	return DefaultAuthenticatedPort
}

// Peer is a single normalized peer address. Peers are immutable once created.
type Peer struct {
	Kind     Kind   `json:"kind"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Passcode string `json:"passcode,omitempty"`
}

// String renders the canonical fully-qualified form of the peer. The passcode
// segment is only present when the peer carries one.
func (p *Peer) String() string {
	if p.Passcode == "" {
		return fmt.Sprintf("%s:%s:%d", p.Kind, p.Host, p.Port)
	}
	return fmt.Sprintf("%s:%s:%d:%s", p.Kind, p.Host, p.Port, p.Passcode)
}

// validHost reports whether host is a syntactically valid IPv4 literal.
func validHost(host string) bool {
	if strings.Count(host, ".") != 3 {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.To4() != nil
}

// validPort reports whether port is in the valid TCP range.
func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

// validPasscode reports whether s matches the 4-segment numeric passcode
// pattern.
func validPasscode(s string) bool {
	return passcodePattern.MatchString(s)
}
