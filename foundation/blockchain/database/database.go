// Package database handles the data model of the blockchain: transactions,
// blocks, and the pool of unspent transaction outputs those transactions are
// validated against.
package database

import (
	"github.com/ethereum/go-ethereum/common"
)

// Hash represents a fixed length content hash. It is comparable by value so
// it can be used as a map key.
type Hash = common.Hash

// Value represents a fixed-point monetary amount. It is signed so a negative
// output value can be represented and rejected during validation.
type Value int64

// CoinbaseReward is the default value of the single output every coinbase
// transaction must carry.
const CoinbaseReward Value = 25
