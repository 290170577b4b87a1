// Package peers normalizes heterogeneous peer address strings into canonical,
// validated peer lists.
//
// A peer is the network address of another node to synchronize with. Two
// kinds exist: authenticated peers (full Bob nodes, addressed with a
// passcode) and simple peers (Lite relays). Raw peer strings arrive in a
// mixed grammar, from fully-qualified "BM:1.2.3.4:21841:1-2-3-4" down to a
// bare IPv4 literal, and are normalized token by token. A token that matches
// no form of the grammar is skipped with a warning; normalization only fails
// when nothing usable remains, because a node cannot start without at least
// one entry point.
//
// The normalized lists are persisted to a peers.json file in the data
// directory, from where the surrounding installer embeds them into node
// configuration.
package peers
