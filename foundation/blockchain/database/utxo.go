package database

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/dolthub/swiss"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UTXO is the reference to an unspent transaction output. Two references are
// the same when the transaction hash and output index are the same.
type UTXO struct {
	TxHash Hash   `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

// compareUTXO orders references by transaction hash and then index.
func compareUTXO(a, b UTXO) int {
	if c := bytes.Compare(a.TxHash[:], b.TxHash[:]); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// =============================================================================

// UTXOPool maps the unspent output references to their outputs. The pool is
// not safe for concurrent use, the owner is expected to provide any locking.
// Owner bytes are copied on the way in and on the way out, so pools that
// share outputs through Copy never expose them to callers.
type UTXOPool struct {
	m *swiss.Map[UTXO, Output]
}

// NewUTXOPool constructs an empty pool.
func NewUTXOPool() *UTXOPool {
	return newUTXOPool(64)
}

func newUTXOPool(capacity int) *UTXOPool {
	return &UTXOPool{
		m: swiss.NewMap[UTXO, Output](uint32(capacity)),
	}
}

// Copy returns an independent copy of the pool.
func (p *UTXOPool) Copy() *UTXOPool {
	cpy := newUTXOPool(max(p.m.Count(), 64))
	p.m.Iter(func(utxo UTXO, out Output) bool {
		cpy.m.Put(utxo, out)
		return false
	})

	return cpy
}

// Contains reports whether the reference is unspent.
func (p *UTXOPool) Contains(utxo UTXO) bool {
	return p.m.Has(utxo)
}

// Get returns a copy of the output for the reference.
func (p *UTXOPool) Get(utxo UTXO) (Output, bool) {
	out, exists := p.m.Get(utxo)
	if !exists {
		return Output{}, false
	}

	out.Owner = slices.Clone(out.Owner)
	return out, true
}

// Add records a copy of the output as unspent.
func (p *UTXOPool) Add(utxo UTXO, out Output) {
	out.Owner = slices.Clone(out.Owner)
	p.m.Put(utxo, out)
}

// Remove marks the reference as spent.
func (p *UTXOPool) Remove(utxo UTXO) {
	p.m.Delete(utxo)
}

// Len returns the number of unspent outputs.
func (p *UTXOPool) Len() int {
	return p.m.Count()
}

// Apply removes every output the transaction consumes and adds a copy of
// every output it produces. No validation is performed.
func (p *UTXOPool) Apply(tx Tx) {
	for _, in := range tx.Inputs {
		p.m.Delete(in.UTXO())
	}

	hash := tx.Hash()
	for i, out := range tx.Outputs {
		p.Add(UTXO{TxHash: hash, Index: uint32(i)}, out)
	}
}

// UTXOs returns every unspent reference in a stable order.
func (p *UTXOPool) UTXOs() []UTXO {
	utxos := make([]UTXO, 0, p.m.Count())
	p.m.Iter(func(utxo UTXO, _ Output) bool {
		utxos = append(utxos, utxo)
		return false
	})

	slices.SortFunc(utxos, compareUTXO)

	return utxos
}

// Balances sums the unspent value held by each owner, keyed by the hex
// encoded owner identity.
func (p *UTXOPool) Balances() map[string]Value {
	balances := make(map[string]Value)
	p.m.Iter(func(_ UTXO, out Output) bool {
		balances[hexutil.Encode(out.Owner)] += out.Value
		return false
	})

	return balances
}

// Equal reports whether both pools hold the same references and outputs.
func (p *UTXOPool) Equal(other *UTXOPool) bool {
	if p.m.Count() != other.m.Count() {
		return false
	}

	equal := true
	p.m.Iter(func(utxo UTXO, out Output) bool {
		o, exists := other.m.Get(utxo)
		if !exists || o.Value != out.Value || !bytes.Equal(o.Owner, out.Owner) {
			equal = false
			return true
		}
		return false
	})

	return equal
}
