// Package trust simulates nodes reaching consensus on a set of transactions
// by gossiping with the peers they follow over a fixed number of rounds.
package trust

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// TxID identifies a transaction being agreed on.
type TxID uint64

// TxSet is a set of transaction ids.
type TxSet map[TxID]struct{}

// NewTxSet constructs a set holding the specified ids.
func NewTxSet(ids ...TxID) TxSet {
	set := make(TxSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Add adds the id, reporting false if it was already in the set.
func (s TxSet) Add(id TxID) bool {
	if _, exists := s[id]; exists {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Contains reports whether the id is in the set.
func (s TxSet) Contains(id TxID) bool {
	_, exists := s[id]
	return exists
}

// Clone returns an independent copy of the set.
func (s TxSet) Clone() TxSet {
	if s == nil {
		return TxSet{}
	}
	return maps.Clone(s)
}

// Sorted returns the ids in ascending order.
func (s TxSet) Sorted() []TxID {
	return slices.Sorted(maps.Keys(s))
}

// Candidate is a transaction id received from a followee during a round.
type Candidate struct {
	Tx     TxID
	Sender peer.ID
}

// compareCandidate orders candidates by sender and then id.
func compareCandidate(a, b Candidate) int {
	if c := cmp.Compare(a.Sender, b.Sender); c != 0 {
		return c
	}
	return cmp.Compare(a.Tx, b.Tx)
}

// =============================================================================

// Node represents the behavior of a participant in the gossip rounds. The
// harness calls SetFollowees and SetPendingTransactions once before the
// first round and then, for every round, SendToFollowers on every node
// before ReceiveFromFollowees on any node.
type Node interface {
	// SetFollowees provides the peers whose broadcasts this node accepts.
	SetFollowees(followees *peer.Set)

	// SetPendingTransactions seeds the known set. The provided set is
	// drained and must not be reused by the caller.
	SetPendingTransactions(pending TxSet)

	// SendToFollowers returns the ids to broadcast this round. The caller
	// owns the returned set.
	SendToFollowers() TxSet

	// ReceiveFromFollowees merges the candidates delivered this round. The
	// node does not keep the slice.
	ReceiveFromFollowees(candidates []Candidate)

	// Known returns a copy of every id the node has accepted.
	Known() TxSet
}

// Params is the probability profile shared by every node in a network.
type Params struct {
	PGraph          float64 `json:"p_graph"`           // Chance a node follows any given peer.
	PMalicious      float64 `json:"p_malicious"`       // Chance a node is malicious.
	PTxDistribution float64 `json:"p_tx_distribution"` // Chance a node is seeded with any given transaction.
	NumRounds       int     `json:"num_rounds"`
}

// Behavior selects how a node takes part in the rounds.
type Behavior int

// Set of node behaviors.
const (
	Compliant Behavior = iota
	Silent
	Flooding
	Tampering
)

// String implements the fmt.Stringer interface.
func (b Behavior) String() string {
	switch b {
	case Compliant:
		return "compliant"
	case Silent:
		return "silent"
	case Flooding:
		return "flooding"
	case Tampering:
		return "tampering"
	}
	return fmt.Sprintf("behavior(%d)", int(b))
}

// New constructs a node with the specified behavior.
func New(behavior Behavior, id peer.ID, params Params) (Node, error) {
	switch behavior {
	case Compliant:
		return newCompliant(id, params), nil
	case Silent:
		return newSilent(id), nil
	case Flooding:
		return newFlooding(id, params), nil
	case Tampering:
		return newTampering(id), nil
	}

	return nil, fmt.Errorf("unknown behavior %d", int(behavior))
}
