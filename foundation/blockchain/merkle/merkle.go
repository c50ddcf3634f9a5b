// Package merkle provides an implementation of a merkle tree for validation
// support for the blockchain.
package merkle

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNotFound is returned when a proof is requested for a value that is not
// part of the tree.
var ErrNotFound = errors.New("unable to find data in tree")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable interface {
	Hash() common.Hash
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint. Levels holds every level of the
// tree, leaves first and the root level last.
type Tree[T Hashable] struct {
	values []T
	levels [][]common.Hash
}

// NewTree constructs a new merkle tree from the specified values. The order
// of the values is significant.
func NewTree[T Hashable](values []T) (*Tree[T], error) {
	if len(values) == 0 {
		return nil, errors.New("cannot construct tree with no content")
	}

	leafs := make([]common.Hash, len(values))
	for i, value := range values {
		leafs[i] = value.Hash()
	}

	t := Tree[T]{
		values: append([]T(nil), values...),
		levels: [][]common.Hash{leafs},
	}

	// Walk up the tree until a level of one node is produced. A level with an
	// odd number of nodes pairs its last node with itself.
	level := leafs
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := i + 1
			if right == len(level) {
				right = i
			}
			next = append(next, hashPair(level[i], level[right]))
		}

		t.levels = append(t.levels, next)
		level = next
	}

	return &t, nil
}

// Root returns the merkle root hash for the tree.
func (t *Tree[T]) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Values returns a copy of the values the tree was constructed with.
func (t *Tree[T]) Values() []T {
	return append([]T(nil), t.values...)
}

// Proof returns the set of hashes needed to recompute the root from the hash
// of the specified value. Each step reports whether the sibling hash is
// concatenated on the left.
func (t *Tree[T]) Proof(value T) ([]Step, error) {
	hash := value.Hash()

	idx := -1
	for i, leaf := range t.levels[0] {
		if leaf == hash {
			idx = i
			break
		}
	}

	if idx == -1 {
		return nil, ErrNotFound
	}

	var proof []Step
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling >= len(level) {
			sibling = idx
		}

		proof = append(proof, Step{
			Hash: level[sibling],
			Left: sibling < idx,
		})

		idx /= 2
	}

	return proof, nil
}

// =============================================================================

// Step is one level of an inclusion proof.
type Step struct {
	Hash common.Hash `json:"hash"`
	Left bool        `json:"left"`
}

// VerifyProof reports whether the leaf hash combined with the proof produces
// the specified root.
func VerifyProof(root common.Hash, leaf common.Hash, proof []Step) bool {
	hash := leaf
	for _, step := range proof {
		if step.Left {
			hash = hashPair(step.Hash, hash)
			continue
		}
		hash = hashPair(hash, step.Hash)
	}

	return hash == root
}

// hashPair produces the parent hash of two child nodes.
func hashPair(left common.Hash, right common.Hash) common.Hash {
	return crypto.Keccak256Hash(left[:], right[:])
}
