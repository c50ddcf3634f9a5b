package trust

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// fabricated marks ids that malicious nodes make up. Seeded ids never have
// this bit set.
const fabricated TxID = 1 << 63

// floodPerRound is how many made up ids a flooding node adds each round.
const floodPerRound = 4

// =============================================================================

// silentNode accepts what it is sent and never forwards anything.
type silentNode struct {
	id    peer.ID
	known TxSet
}

func newSilent(id peer.ID) *silentNode {
	return &silentNode{
		id:    id,
		known: TxSet{},
	}
}

func (n *silentNode) SetFollowees(*peer.Set) {}

func (n *silentNode) SetPendingTransactions(pending TxSet) {
	for id := range pending {
		n.known.Add(id)
	}
	clear(pending)
}

func (n *silentNode) SendToFollowers() TxSet {
	return TxSet{}
}

func (n *silentNode) ReceiveFromFollowees(candidates []Candidate) {
	for _, c := range candidates {
		n.known.Add(c.Tx)
	}
}

func (n *silentNode) Known() TxSet {
	return n.known.Clone()
}

// =============================================================================

// floodingNode forwards everything it knows every round along with made up
// ids.
type floodingNode struct {
	id     peer.ID
	params Params
	round  int
	known  TxSet
}

func newFlooding(id peer.ID, params Params) *floodingNode {
	return &floodingNode{
		id:     id,
		params: params,
		known:  TxSet{},
	}
}

func (n *floodingNode) SetFollowees(*peer.Set) {}

func (n *floodingNode) SetPendingTransactions(pending TxSet) {
	for id := range pending {
		n.known.Add(id)
	}
	clear(pending)
}

func (n *floodingNode) SendToFollowers() TxSet {
	n.round++

	out := n.known.Clone()
	for i := range floodPerRound {
		out.Add(fabricated | TxID(n.id)<<32 | TxID(n.round)<<8 | TxID(i))
	}

	return out
}

func (n *floodingNode) ReceiveFromFollowees(candidates []Candidate) {
	for _, c := range candidates {
		n.known.Add(c.Tx)
	}
}

func (n *floodingNode) Known() TxSet {
	return n.known.Clone()
}

// =============================================================================

// tamperingNode forwards an altered copy of every id it knows.
type tamperingNode struct {
	id    peer.ID
	known TxSet
}

func newTampering(id peer.ID) *tamperingNode {
	return &tamperingNode{
		id:    id,
		known: TxSet{},
	}
}

func (n *tamperingNode) SetFollowees(*peer.Set) {}

func (n *tamperingNode) SetPendingTransactions(pending TxSet) {
	for id := range pending {
		n.known.Add(id)
	}
	clear(pending)
}

func (n *tamperingNode) SendToFollowers() TxSet {
	out := make(TxSet, len(n.known))
	for id := range n.known {
		out.Add(fabricated | id)
	}

	return out
}

func (n *tamperingNode) ReceiveFromFollowees(candidates []Candidate) {
	for _, c := range candidates {
		n.known.Add(c.Tx)
	}
}

func (n *tamperingNode) Known() TxSet {
	return n.known.Clone()
}
