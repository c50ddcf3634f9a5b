package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	prevTx      string
	outputIndex uint32
	to          string
	value       int64
	change      int64
	nonce       uint64
)

// spendCmd signs a transaction claiming one output and prints it as a
// single line of JSON.
var spendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Sign a transaction spending one of your outputs",
	Run:   spendRun,
}

func init() {
	rootCmd.AddCommand(spendCmd)
	spendCmd.Flags().StringVarP(&prevTx, "prev", "r", "", "Hash of the transaction holding the output.")
	spendCmd.Flags().Uint32VarP(&outputIndex, "index", "i", 0, "Index of the output to claim.")
	spendCmd.Flags().StringVarP(&to, "to", "t", "", "Public identity of the receiver.")
	spendCmd.Flags().Int64VarP(&value, "value", "v", 0, "Value to send.")
	spendCmd.Flags().Int64VarP(&change, "change", "c", 0, "Value to return to yourself.")
	spendCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce to tell identical transactions apart.")
}

func spendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	prev, err := hexutil.Decode(prevTx)
	if err != nil || len(prev) != common.HashLength {
		log.Fatalf("invalid previous transaction hash %q", prevTx)
	}

	receiver, err := hexutil.Decode(to)
	if err != nil {
		log.Fatalf("invalid receiver %q: %s", to, err)
	}

	tx := database.Tx{
		Nonce: nonce,
		Inputs: []database.Input{
			{PrevTxHash: common.BytesToHash(prev), OutputIndex: outputIndex},
		},
		Outputs: []database.Output{
			{Value: database.Value(value), Owner: receiver},
		},
	}

	if change > 0 {
		tx.Outputs = append(tx.Outputs, database.Output{
			Value: database.Value(change),
			Owner: signature.PublicKeyBytes(privateKey.PublicKey),
		})
	}

	if err := tx.Sign(0, privateKey); err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}
