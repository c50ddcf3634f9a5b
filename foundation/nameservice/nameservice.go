// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the public identities that own outputs.
package nameservice

import (
	"fmt"
	"io/fs"
	"maps"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of hex encoded public keys for name lookup.
type NameService struct {
	owners map[string]string
}

// New constructs a Name Service with the keys from the specified folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		owners: make(map[string]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		owner := hexutil.Encode(signature.PublicKeyBytes(privateKey.PublicKey))
		ns.owners[owner] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified hex encoded owner. The owner is
// returned unchanged when no name is known.
func (ns *NameService) Lookup(owner string) string {
	name, exists := ns.owners[owner]
	if !exists {
		return owner
	}
	return name
}

// Copy returns a copy of the map of owners and names.
func (ns *NameService) Copy() map[string]string {
	return maps.Clone(ns.owners)
}
