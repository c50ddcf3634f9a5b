package txhandler_test

import (
	"crypto/ecdsa"
	"errors"
	"math"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/txhandler"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	billHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	jillHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Validate(t *testing.T) {
	bill, jill := keys(t)
	billID := signature.PublicKeyBytes(bill.PublicKey)
	jillID := signature.PublicKeyBytes(jill.PublicKey)

	// Bill owns two outputs worth 25 and 10.
	funding := database.Tx{
		Outputs: []database.Output{
			{Value: 25, Owner: billID},
			{Value: 10, Owner: billID},
		},
	}
	pool := database.NewUTXOPool()
	pool.Apply(funding)

	type table struct {
		name string
		tx   database.Tx
		key  *ecdsa.PrivateKey
		err  error
	}

	tt := []table{
		{
			name: "valid",
			tx:   spend(funding, []uint32{0}, database.Output{Value: 25, Owner: jillID}),
			key:  bill,
		},
		{
			name: "fee",
			tx:   spend(funding, []uint32{0, 1}, database.Output{Value: 30, Owner: jillID}),
			key:  bill,
		},
		{
			name: "missing",
			tx: database.Tx{
				Inputs:  []database.Input{{PrevTxHash: funding.Hash(), OutputIndex: 2}},
				Outputs: []database.Output{{Value: 1, Owner: jillID}},
			},
			key: bill,
			err: txhandler.ErrMissingUTXO,
		},
		{
			name: "wrongsigner",
			tx:   spend(funding, []uint32{0}, database.Output{Value: 25, Owner: jillID}),
			key:  jill,
			err:  txhandler.ErrInvalidSignature,
		},
		{
			name: "doubleclaim",
			tx:   spend(funding, []uint32{0, 0}, database.Output{Value: 50, Owner: jillID}),
			key:  bill,
			err:  txhandler.ErrDoubleClaim,
		},
		{
			name: "negative",
			tx: spend(funding, []uint32{0},
				database.Output{Value: 30, Owner: jillID},
				database.Output{Value: -5, Owner: billID},
			),
			key: bill,
			err: txhandler.ErrNegativeOutput,
		},
		{
			name: "insufficient",
			tx:   spend(funding, []uint32{1}, database.Output{Value: 11, Owner: jillID}),
			key:  bill,
			err:  txhandler.ErrInsufficientFunds,
		},
		{
			name: "overflow",
			tx: spend(funding, []uint32{0},
				database.Output{Value: math.MaxInt64, Owner: jillID},
				database.Output{Value: math.MaxInt64, Owner: jillID},
			),
			key: bill,
			err: txhandler.ErrOverflow,
		},
	}

	t.Log("Given the need to validate transactions against a pool.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
			{
				f := func(t *testing.T) {
					tx := signAll(t, tst.tx, tst.key)
					h := txhandler.New(signature.Verifier{})

					err := h.Validate(tx, pool)
					if !errors.Is(err, tst.err) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right validation result.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right validation result.", success, testID)

					if h.IsValid(tx, pool) != (tst.err == nil) || h.IsValid(tx, pool) != (tst.err == nil) {
						t.Fatalf("\t%s\tTest %d:\tShould get the same answer from IsValid every time.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the same answer from IsValid every time.", success, testID)

					if pool.Len() != 2 || !pool.Contains(funding.OutputUTXO(0)) || !pool.Contains(funding.OutputUTXO(1)) {
						t.Fatalf("\t%s\tTest %d:\tShould not change the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not change the pool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_HandleOrder(t *testing.T) {
	bill, jill := keys(t)
	billID := signature.PublicKeyBytes(bill.PublicKey)
	jillID := signature.PublicKeyBytes(jill.PublicKey)

	funding := database.NewCoinbase(billID, database.CoinbaseReward, 0)
	pool := database.NewUTXOPool()
	pool.Apply(funding)

	// Both transactions spend the same output and each is valid on its own.
	t1 := signAll(t, spend(funding, []uint32{0}, database.Output{Value: 25, Owner: jillID}), bill)
	t2 := signAll(t, spend(funding, []uint32{0}, database.Output{Value: 20, Owner: billID}), bill)

	h := txhandler.New(signature.Verifier{})

	t.Log("Given the need to resolve double spends by processing order.")
	{
		type table struct {
			name string
			txs  []database.Tx
			exp  database.Tx
		}

		tt := []table{
			{name: "t1first", txs: []database.Tx{t1, t2}, exp: t1},
			{name: "t2first", txs: []database.Tx{t2, t1}, exp: t2},
		}

		for testID, tst := range tt {
			f := func(t *testing.T) {
				accepted, next := h.Handle(tst.txs, pool)

				if len(accepted) != 1 || accepted[0].Hash() != tst.exp.Hash() {
					t.Fatalf("\t%s\tTest %d:\tShould accept exactly the first transaction: got %d accepted", failed, testID, len(accepted))
				}
				t.Logf("\t%s\tTest %d:\tShould accept exactly the first transaction.", success, testID)

				if next.Contains(funding.OutputUTXO(0)) || !next.Contains(tst.exp.OutputUTXO(0)) {
					t.Fatalf("\t%s\tTest %d:\tShould return the pool with the winner applied.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould return the pool with the winner applied.", success, testID)

				if !pool.Contains(funding.OutputUTXO(0)) || pool.Len() != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould not change the provided pool.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not change the provided pool.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_HandleChain(t *testing.T) {
	bill, jill := keys(t)
	billID := signature.PublicKeyBytes(bill.PublicKey)
	jillID := signature.PublicKeyBytes(jill.PublicKey)

	funding := database.NewCoinbase(billID, database.CoinbaseReward, 0)
	pool := database.NewUTXOPool()
	pool.Apply(funding)

	// t2 spends an output created by t1 in the same batch.
	t1 := signAll(t, spend(funding, []uint32{0}, database.Output{Value: 25, Owner: jillID}), bill)
	t2 := signAll(t, spend(t1, []uint32{0}, database.Output{Value: 24, Owner: billID}), jill)

	h := txhandler.New(signature.Verifier{})

	t.Log("Given the need to apply dependent transactions in one batch.")
	{
		accepted, next := h.Handle([]database.Tx{t2, t1}, pool)
		if len(accepted) != 1 || accepted[0].Hash() != t1.Hash() {
			t.Fatalf("\t%s\tShould drop a child that arrives before its parent.", failed)
		}
		t.Logf("\t%s\tShould drop a child that arrives before its parent.", success)

		if next.Len() != 1 {
			t.Fatalf("\t%s\tShould hold only the parent output: got %d", failed, next.Len())
		}
		t.Logf("\t%s\tShould hold only the parent output.", success)

		accepted, next = h.Handle([]database.Tx{t1, t2}, pool)
		if len(accepted) != 2 {
			t.Fatalf("\t%s\tShould accept a child that arrives after its parent: got %d", failed, len(accepted))
		}
		t.Logf("\t%s\tShould accept a child that arrives after its parent.", success)

		if next.Len() != 1 || !next.Contains(t2.OutputUTXO(0)) {
			t.Fatalf("\t%s\tShould hold only the child output.", failed)
		}
		t.Logf("\t%s\tShould hold only the child output.", success)

		fee, ok := h.Fee(t2, next)
		if ok {
			t.Fatalf("\t%s\tShould not compute a fee for a spent transaction: %d", failed, fee)
		}

		fee, ok = h.Fee(t1, pool)
		if !ok || fee != 0 {
			t.Fatalf("\t%s\tShould compute a zero fee for a balanced transaction: %d", failed, fee)
		}
		t.Logf("\t%s\tShould compute transaction fees.", success)
	}
}

// =============================================================================

func keys(t *testing.T) (*ecdsa.PrivateKey, *ecdsa.PrivateKey) {
	bill, err := crypto.HexToECDSA(billHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	jill, err := crypto.HexToECDSA(jillHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	return bill, jill
}

func spend(from database.Tx, indexes []uint32, outputs ...database.Output) database.Tx {
	hash := from.Hash()

	var tx database.Tx
	for _, idx := range indexes {
		tx.Inputs = append(tx.Inputs, database.Input{PrevTxHash: hash, OutputIndex: idx})
	}
	tx.Outputs = outputs

	return tx
}

func signAll(t *testing.T, tx database.Tx, key *ecdsa.PrivateKey) database.Tx {
	for i := range tx.Inputs {
		if err := tx.Sign(i, key); err != nil {
			t.Fatalf("Should be able to sign input %d: %s", i, err)
		}
	}

	return tx
}
