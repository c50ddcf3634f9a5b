package genesis_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/validate"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func Test_Load(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	beneficiary := hexutil.Encode(signature.PublicKeyBytes(pk.PublicKey))

	type table struct {
		name   string
		gen    genesis.Genesis
		fields []string
	}

	tt := []table{
		{
			name: "valid",
			gen:  genesis.Genesis{CoinbaseReward: 25, CutOffAge: 10, TransPerBlock: 10, Beneficiary: beneficiary},
		},
		{
			name:   "noreward",
			gen:    genesis.Genesis{CutOffAge: 10, TransPerBlock: 10, Beneficiary: beneficiary},
			fields: []string{"coinbase_reward"},
		},
		{
			name:   "negativereward",
			gen:    genesis.Genesis{CoinbaseReward: -1, CutOffAge: 10, TransPerBlock: 10, Beneficiary: beneficiary},
			fields: []string{"coinbase_reward"},
		},
		{
			name:   "nocutoff",
			gen:    genesis.Genesis{CoinbaseReward: 25, TransPerBlock: 10, Beneficiary: "0xzz"},
			fields: []string{"cut_off_age", "beneficiary"},
		},
	}

	t.Log("Given the need to load the genesis file.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s genesis.", testID, tst.name)
			{
				f := func(t *testing.T) {
					path := filepath.Join(t.TempDir(), "genesis.json")

					data, err := json.Marshal(tst.gen)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to marshal the genesis: %s", failed, testID, err)
					}

					if err := os.WriteFile(path, data, 0600); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to write the genesis: %s", failed, testID, err)
					}

					gen, err := genesis.Load(path)
					if len(tst.fields) == 0 {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to load the genesis: %s", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to load the genesis.", success, testID)

						block, err := gen.Block()
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to build the genesis block: %s", failed, testID, err)
						}

						if !block.IsGenesis() || block.Coinbase.Outputs[0].Value != tst.gen.CoinbaseReward {
							t.Fatalf("\t%s\tTest %d:\tShould pay the reward in the genesis block.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould pay the reward in the genesis block.", success, testID)
						return
					}

					var fieldErrs validate.FieldErrors
					if !errors.As(err, &fieldErrs) {
						t.Fatalf("\t%s\tTest %d:\tShould get back field errors: %v", failed, testID, err)
					}

					fields := fieldErrs.Fields()
					for _, name := range tst.fields {
						if _, exists := fields[name]; !exists {
							t.Fatalf("\t%s\tTest %d:\tShould get an error for field %q: %v", failed, testID, name, fieldErrs)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get an error for every bad field.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_BadBeneficiary(t *testing.T) {
	gen := genesis.Genesis{CoinbaseReward: 25, CutOffAge: 10, TransPerBlock: 10, Beneficiary: "0x0102"}

	if err := gen.Validate(); err == nil {
		t.Fatalf("\t%s\tShould reject a beneficiary that is not a public key.", failed)
	}
	t.Logf("\t%s\tShould reject a beneficiary that is not a public key.", success)

	if _, err := gen.Block(); err == nil {
		t.Fatalf("\t%s\tShould not build a genesis block for a bad beneficiary.", failed)
	}
	t.Logf("\t%s\tShould not build a genesis block for a bad beneficiary.", success)
}
