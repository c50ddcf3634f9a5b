package trust

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// compliantNode follows the rules. It trusts every followee and unions
// everything it is sent.
type compliantNode struct {
	id        peer.ID
	params    Params
	followees *peer.Set
	round     int
	known     TxSet
	learned   TxSet
}

func newCompliant(id peer.ID, params Params) *compliantNode {
	return &compliantNode{
		id:        id,
		params:    params,
		followees: peer.NewSet(),
		known:     TxSet{},
		learned:   TxSet{},
	}
}

func (n *compliantNode) SetFollowees(followees *peer.Set) {
	n.followees = followees
}

func (n *compliantNode) SetPendingTransactions(pending TxSet) {
	for id := range pending {
		n.known.Add(id)
		n.learned.Add(id)
	}
	clear(pending)
}

// SendToFollowers broadcasts what was learned since the last send. The
// final round broadcasts everything known so followers that missed an
// earlier round still catch up.
func (n *compliantNode) SendToFollowers() TxSet {
	n.round++

	if n.round >= n.params.NumRounds {
		clear(n.learned)
		return n.known.Clone()
	}

	out := n.learned
	n.learned = TxSet{}

	return out
}

func (n *compliantNode) ReceiveFromFollowees(candidates []Candidate) {
	for _, c := range candidates {
		if !n.followees.Contains(c.Sender) {
			continue
		}

		if n.known.Add(c.Tx) {
			n.learned.Add(c.Tx)
		}
	}
}

func (n *compliantNode) Known() TxSet {
	return n.known.Clone()
}
