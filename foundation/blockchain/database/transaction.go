package database

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
)

// Input claims a prior output. The signature covers the data returned by
// DataToSign for the position of this input in its transaction.
type Input struct {
	PrevTxHash  Hash          `json:"prev_tx_hash"` // Bitcoin: Hash of the transaction that produced the output.
	OutputIndex uint32        `json:"output_index"` // Bitcoin: Index of the output in that transaction.
	Signature   hexutil.Bytes `json:"signature"`    // Signature by the owner of the claimed output.
}

// UTXO returns the output reference this input claims.
func (in Input) UTXO() UTXO {
	return UTXO{TxHash: in.PrevTxHash, Index: in.OutputIndex}
}

// Output is a value assigned to an owner identity.
type Output struct {
	Value Value         `json:"value"`
	Owner hexutil.Bytes `json:"owner"` // Uncompressed secp256k1 public key of the owner.
}

// =============================================================================

// Tx is the transactional information moving value from claimed outputs into
// new outputs. A coinbase transaction has no inputs and a single output.
type Tx struct {
	Nonce   uint64   `json:"nonce"` // Distinguishes otherwise identical transactions, like two coinbases to one owner.
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
}

// NewCoinbase constructs a coinbase transaction paying value to the owner.
func NewCoinbase(owner []byte, value Value, nonce uint64) Tx {
	return Tx{
		Nonce:   nonce,
		Outputs: []Output{{Value: value, Owner: owner}},
	}
}

// Clone returns a copy of the transaction sharing no memory with the
// original.
func (tx Tx) Clone() Tx {
	cpy := Tx{
		Nonce:   tx.Nonce,
		Inputs:  make([]Input, len(tx.Inputs)),
		Outputs: make([]Output, len(tx.Outputs)),
	}
	for i, in := range tx.Inputs {
		in.Signature = slices.Clone(in.Signature)
		cpy.Inputs[i] = in
	}
	for i, out := range tx.Outputs {
		out.Owner = slices.Clone(out.Owner)
		cpy.Outputs[i] = out
	}

	return cpy
}

// IsCoinbase reports whether the transaction has the shape of a coinbase.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 0 && len(tx.Outputs) == 1
}

// Hash returns the content hash of the transaction including the input
// signatures. It implements the merkle Hashable interface.
func (tx Tx) Hash() Hash {
	return signature.Hash(tx.encode(true))
}

// OutputUTXO returns the reference for the output at the specified index.
func (tx Tx) OutputUTXO(index uint32) UTXO {
	return UTXO{TxHash: tx.Hash(), Index: index}
}

// DataToSign returns the message the owner of the output claimed by the input
// at the specified index must sign. It is the canonical encoding of the
// transaction with every signature blank, followed by the big endian index.
func (tx Tx) DataToSign(index int) []byte {
	data, err := rlp.EncodeToBytes(tx.encode(false))
	if err != nil {
		return nil
	}

	return binary.BigEndian.AppendUint32(data, uint32(index))
}

// Sign uses the specified private key to sign the input at the specified
// index. Pointer semantics are used since the signature is stored on the input.
func (tx *Tx) Sign(index int, privateKey *ecdsa.PrivateKey) error {
	if index < 0 || index >= len(tx.Inputs) {
		return fmt.Errorf("input index %d out of range, inputs %d", index, len(tx.Inputs))
	}

	sig, err := signature.Sign(tx.DataToSign(index), privateKey)
	if err != nil {
		return err
	}

	tx.Inputs[index].Signature = sig

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]", tx.Hash().TerminalString(), len(tx.Inputs), len(tx.Outputs))
}

// =============================================================================

// txData is the canonical form of a transaction used for hashing and signing.
type txData struct {
	Nonce   uint64
	Inputs  []inputData
	Outputs []outputData
}

type inputData struct {
	PrevTxHash  Hash
	OutputIndex uint32
	Signature   []byte
}

type outputData struct {
	Value uint64
	Owner []byte
}

// encode produces the canonical form, optionally leaving out the signatures.
func (tx Tx) encode(withSignatures bool) txData {
	data := txData{
		Nonce:   tx.Nonce,
		Inputs:  make([]inputData, len(tx.Inputs)),
		Outputs: make([]outputData, len(tx.Outputs)),
	}

	for i, in := range tx.Inputs {
		data.Inputs[i] = inputData{
			PrevTxHash:  in.PrevTxHash,
			OutputIndex: in.OutputIndex,
		}
		if withSignatures {
			data.Inputs[i].Signature = in.Signature
		}
	}

	// RLP has no signed integers so the value is carried as its two's
	// complement bit pattern.
	for i, out := range tx.Outputs {
		data.Outputs[i] = outputData{
			Value: uint64(out.Value),
			Owner: out.Owner,
		}
	}

	return data
}
