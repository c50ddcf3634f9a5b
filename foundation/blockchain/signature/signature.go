// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// ZeroHash represents a hash code of zeros. It is used as the previous block
// hash of the genesis block.
var ZeroHash common.Hash

// stampPrefix is mixed into every digest that gets signed. This will make it
// clear that the signature was produced for this blockchain and can't be
// replayed as an Ethereum message.
const stampPrefix = "\x19UTXO Signed Message:\n32"

// =============================================================================

// Hash returns a unique hash for the value. The value is serialized with RLP
// so the same value always produces the same hash.
func Hash(value any) common.Hash {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return ZeroHash
	}

	return crypto.Keccak256Hash(data)
}

// Sign uses the specified private key to sign the message. The signature is
// returned in the 65 byte [R|S|V] format.
func Sign(message []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the data for signing.
	digest := stamp(message)

	// Sign the digest with the private key to produce a signature.
	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the digest and signature.
	publicKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return nil, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), digest, rs) {
		return nil, errors.New("invalid signature")
	}

	return sig, nil
}

// PublicKeyBytes returns the 65 byte uncompressed form of the public key. This
// is the identity recorded as the owner of an output.
func PublicKeyBytes(pk ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(&pk)
}

// =============================================================================

// Verifier checks secp256k1 signatures produced by Sign.
type Verifier struct{}

// Verify reports whether sig is a valid signature of message by the owner of
// publicKey. Malformed keys or signatures are reported as not valid.
func (Verifier) Verify(publicKey []byte, message []byte, sig []byte) bool {
	if len(sig) != crypto.SignatureLength && len(sig) != crypto.RecoveryIDOffset {
		return false
	}

	if _, err := crypto.UnmarshalPubkey(publicKey); err != nil {
		return false
	}

	return crypto.VerifySignature(publicKey, stamp(message), sig[:crypto.RecoveryIDOffset])
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the message with the
// stamp embedded into the final hash.
func stamp(message []byte) []byte {

	// Hash the message into a 32 byte array. This will provide a data
	// length consistency with all messages.
	msgHash := crypto.Keccak256(message)

	// Hash the stamp and msgHash together in a final 32 byte array
	// that represents the message.
	return crypto.Keccak256([]byte(stampPrefix), msgHash)
}
