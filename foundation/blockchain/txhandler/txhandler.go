// Package txhandler validates transactions against a pool of unspent outputs
// and applies batches of them, keeping only those that are mutually valid.
package txhandler

import (
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// Set of rules a transaction can break.
var (
	ErrMissingUTXO       = errors.New("claimed output is not in the pool")
	ErrInvalidSignature  = errors.New("input signature is invalid")
	ErrDoubleClaim       = errors.New("output claimed more than once")
	ErrNegativeOutput    = errors.New("output value is negative")
	ErrInsufficientFunds = errors.New("outputs exceed inputs")
	ErrOverflow          = errors.New("value sum overflows")
)

// Verifier represents the behavior required to check the signature of an
// output owner over a message.
type Verifier interface {
	Verify(publicKey []byte, message []byte, sig []byte) bool
}

// =============================================================================

// Handler validates and applies transactions using the configured verifier.
type Handler struct {
	verifier Verifier
}

// New constructs a handler that checks signatures with the verifier.
func New(verifier Verifier) *Handler {
	return &Handler{
		verifier: verifier,
	}
}

// IsValid reports whether the transaction can be applied to the pool. The
// pool is not changed.
func (h *Handler) IsValid(tx database.Tx, pool *database.UTXOPool) bool {
	return h.Validate(tx, pool) == nil
}

// Validate checks the transaction against the pool and returns the first
// rule it breaks:
//
//	(1) every claimed output is in the pool,
//	(2) every input signature is valid for the owner of the claimed output,
//	(3) no output is claimed twice by the transaction,
//	(4) every output value is non-negative,
//	(5) the claimed values cover the output values.
//
// The pool is not changed.
func (h *Handler) Validate(tx database.Tx, pool *database.UTXOPool) error {
	claimed := make(map[database.UTXO]struct{}, len(tx.Inputs))

	var totalIn database.Value
	for i, in := range tx.Inputs {
		utxo := in.UTXO()

		out, exists := pool.Get(utxo)
		if !exists {
			return fmt.Errorf("input %d: %w", i, ErrMissingUTXO)
		}

		if !h.verifier.Verify(out.Owner, tx.DataToSign(i), in.Signature) {
			return fmt.Errorf("input %d: %w", i, ErrInvalidSignature)
		}

		if _, exists := claimed[utxo]; exists {
			return fmt.Errorf("input %d: %w", i, ErrDoubleClaim)
		}
		claimed[utxo] = struct{}{}

		var ok bool
		if totalIn, ok = add(totalIn, out.Value); !ok {
			return fmt.Errorf("input %d: %w", i, ErrOverflow)
		}
	}

	var totalOut database.Value
	for i, out := range tx.Outputs {
		if out.Value < 0 {
			return fmt.Errorf("output %d: %w", i, ErrNegativeOutput)
		}

		var ok bool
		if totalOut, ok = add(totalOut, out.Value); !ok {
			return fmt.Errorf("output %d: %w", i, ErrOverflow)
		}
	}

	if totalIn < totalOut {
		return fmt.Errorf("in %d, out %d: %w", totalIn, totalOut, ErrInsufficientFunds)
	}

	return nil
}

// Handle processes the transactions in the order provided and returns the
// ones that were accepted along with the resulting pool. Each transaction is
// checked against the pool as changed by the transactions accepted before
// it, so the order decides which of two conflicting transactions wins.
// Invalid transactions are dropped. The provided pool is not changed.
func (h *Handler) Handle(txs []database.Tx, pool *database.UTXOPool) ([]database.Tx, *database.UTXOPool) {
	next := pool.Copy()

	accepted := make([]database.Tx, 0, len(txs))
	for _, tx := range txs {
		if !h.IsValid(tx, next) {
			continue
		}

		next.Apply(tx)
		accepted = append(accepted, tx)
	}

	return accepted, next
}

// Fee returns the difference between the claimed and produced values of a
// transaction that is valid against the pool.
func (h *Handler) Fee(tx database.Tx, pool *database.UTXOPool) (database.Value, bool) {
	if !h.IsValid(tx, pool) {
		return 0, false
	}

	var fee database.Value
	for _, in := range tx.Inputs {
		out, _ := pool.Get(in.UTXO())
		fee += out.Value
	}
	for _, out := range tx.Outputs {
		fee -= out.Value
	}

	return fee, true
}

// =============================================================================

// add sums two values, reporting false if the sum leaves the value range.
func add(a, b database.Value) (database.Value, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}

	return a + b, true
}
