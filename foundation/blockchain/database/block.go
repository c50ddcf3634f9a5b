package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// ErrMissingCoinbase is returned when a block has no coinbase transaction.
var ErrMissingCoinbase = errors.New("block has no coinbase")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PrevBlockHash Hash `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain, zero for genesis.
	TransRoot     Hash `json:"trans_root"`      // Bitcoin: Merkle root over the coinbase and the transactions.
}

// Block represents a group of transactions batched together with the coinbase
// rewarding whoever produced it.
type Block struct {
	Header   BlockHeader `json:"header"`
	Coinbase *Tx         `json:"coinbase"`
	Trans    []Tx        `json:"trans"`
}

// NewBlock constructs a block on top of the specified previous block hash.
// Use signature.ZeroHash as the previous hash to construct a genesis block.
func NewBlock(prevBlockHash Hash, coinbase Tx, trans []Tx) (Block, error) {
	b := Block{
		Header: BlockHeader{
			PrevBlockHash: prevBlockHash,
		},
		Coinbase: &coinbase,
		Trans:    trans,
	}

	tree, err := merkle.NewTree(b.leafs())
	if err != nil {
		return Block{}, err
	}
	b.Header.TransRoot = tree.Root()

	return b, nil
}

// Hash returns the unique hash for the block.
//
// Only the header is hashed. The header commits to the transactions through
// the merkle root.
func (b Block) Hash() Hash {
	return signature.Hash(b.Header)
}

// Clone returns a copy of the block sharing no memory with the original.
func (b Block) Clone() Block {
	cpy := Block{
		Header: b.Header,
	}
	if b.Coinbase != nil {
		cb := b.Coinbase.Clone()
		cpy.Coinbase = &cb
	}
	if b.Trans != nil {
		cpy.Trans = make([]Tx, len(b.Trans))
		for i, tx := range b.Trans {
			cpy.Trans[i] = tx.Clone()
		}
	}

	return cpy
}

// IsGenesis reports whether the block has no previous block reference.
func (b Block) IsGenesis() bool {
	return b.Header.PrevBlockHash == signature.ZeroHash
}

// ValidateRoot checks the merkle root in the header matches the coinbase and
// transactions carried by the block.
func (b Block) ValidateRoot() error {
	if b.Coinbase == nil {
		return ErrMissingCoinbase
	}

	tree, err := merkle.NewTree(b.leafs())
	if err != nil {
		return err
	}

	if tree.Root() != b.Header.TransRoot {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", tree.Root(), b.Header.TransRoot)
	}

	return nil
}

// ProveTx returns the merkle proof that the transaction is part of the block.
func (b Block) ProveTx(tx Tx) ([]merkle.Step, error) {
	if b.Coinbase == nil {
		return nil, ErrMissingCoinbase
	}

	tree, err := merkle.NewTree(b.leafs())
	if err != nil {
		return nil, err
	}

	return tree.Proof(tx)
}

// leafs returns the values committed to by the merkle root, coinbase first.
func (b Block) leafs() []Tx {
	var leafs []Tx
	if b.Coinbase != nil {
		leafs = append(leafs, *b.Coinbase)
	}

	return append(leafs, b.Trans...)
}
