// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/validate"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Genesis represents the genesis file. These values are fixed when the chain
// is deployed and can't change per call.
type Genesis struct {
	Date           time.Time      `json:"date"`
	CoinbaseReward database.Value `json:"coinbase_reward" validate:"required,gt=0"` // Value every coinbase output must carry.
	CutOffAge      uint64         `json:"cut_off_age" validate:"required"`          // How far behind the best chain a branch may still be extended.
	TransPerBlock  uint16         `json:"trans_per_block" validate:"required"`      // The maximum number of transactions picked for a block.
	Beneficiary    string         `json:"beneficiary" validate:"required,hexadecimal"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values are usable.
func (g Genesis) Validate() error {
	if err := validate.Check(g); err != nil {
		return fmt.Errorf("validating genesis: %w", err)
	}

	if _, err := g.beneficiary(); err != nil {
		return fmt.Errorf("validating genesis: %w", err)
	}

	return nil
}

// Block constructs the trusted genesis block paying the coinbase reward to
// the beneficiary.
func (g Genesis) Block() (database.Block, error) {
	owner, err := g.beneficiary()
	if err != nil {
		return database.Block{}, err
	}

	coinbase := database.NewCoinbase(owner, g.CoinbaseReward, 0)

	return database.NewBlock(signature.ZeroHash, coinbase, nil)
}

// beneficiary decodes the beneficiary public key.
func (g Genesis) beneficiary() ([]byte, error) {
	owner, err := hexutil.Decode(g.Beneficiary)
	if err != nil {
		return nil, fmt.Errorf("beneficiary: %w", err)
	}

	if _, err := crypto.UnmarshalPubkey(owner); err != nil {
		return nil, fmt.Errorf("beneficiary: %w", err)
	}

	return owner, nil
}
