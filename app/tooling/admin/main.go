// This program replays a file of blocks through the ledger and reports the
// balances held on the best chain.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/logger"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Genesis struct {
			Path string `conf:"default:zblock/genesis.json"`
		}
		Blocks struct {
			Path string `conf:"default:zblock/blocks.json"`
		}
		Trans struct {
			Path string
		}
		Keys struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
		State struct {
			SelectStrategy string `conf:"default:fee"`
		}
		Events struct {
			Stream bool `conf:"default:false"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	ns, err := nameservice.New(cfg.Keys.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for owner, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "owner", owner)
	}

	// =========================================================================
	// Blockchain Support

	gen, err := genesis.Load(cfg.Genesis.Path)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	genesisBlock, err := gen.Block()
	if err != nil {
		return fmt.Errorf("building genesis block: %w", err)
	}

	// Every event from the ledger for this replay is tagged with one trace id
	// and published to any subscriber.
	bus := events.New()
	traceID := uuid.NewString()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", traceID)
		bus.Publish(s)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	defer bus.Close()

	if cfg.Events.Stream {
		ch, err := bus.Subscribe(uuid.NewString())
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range ch {
				fmt.Println("event:", event)
			}
		}()
	}

	st, err := state.New(state.Config{
		Genesis:        genesisBlock,
		Verifier:       signature.Verifier{},
		CoinbaseReward: gen.CoinbaseReward,
		CutOffAge:      gen.CutOffAge,
		SelectStrategy: cfg.State.SelectStrategy,
		EvHandler:      ev,
	})
	if err != nil {
		return fmt.Errorf("constructing ledger: %w", err)
	}

	// =========================================================================
	// Replay

	var accepted, rejected int
	err = readLines(cfg.Blocks.Path, func(line int, data []byte) error {
		var block database.Block
		if err := json.Unmarshal(data, &block); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		if err := st.ProcessBlock(&block); err != nil {
			rejected++
			log.Infow("replay", "traceid", traceID, "line", line, "block", block.Hash(), "status", "rejected", "reason", err)
			return nil
		}

		accepted++
		height, _ := st.BlockHeight(block.Hash())
		log.Infow("replay", "traceid", traceID, "line", line, "block", block.Hash(), "status", "accepted", "height", height)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replaying blocks: %w", err)
	}

	log.Infow("replay", "traceid", traceID, "accepted", accepted, "rejected", rejected, "maxHeight", st.MaxHeight(), "retained", st.Retained())

	if cfg.Trans.Path != "" {
		err := readLines(cfg.Trans.Path, func(line int, data []byte) error {
			var tx database.Tx
			if err := json.Unmarshal(data, &tx); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}

			st.AddTransaction(tx)
			return nil
		})
		if err != nil {
			return fmt.Errorf("loading transactions: %w", err)
		}

		for _, tx := range st.PickBest(int(gen.TransPerBlock)) {
			fmt.Printf("next block: %s\n", tx)
		}
	}

	// =========================================================================
	// Balances

	fmt.Printf("best chain: block %s at height %d\n", st.MaxHeightBlock().Hash(), st.MaxHeight())

	balances := st.MaxHeightUTXOPool().Balances()
	owners := make([]string, 0, len(balances))
	for owner := range balances {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool {
		return ns.Lookup(owners[i]) < ns.Lookup(owners[j])
	})

	for _, owner := range owners {
		fmt.Printf("%-20s %d\n", ns.Lookup(owner), balances[owner])
	}

	return nil
}

// readLines calls fn for every non empty line of the file.
func readLines(path string, fn func(line int, data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var line int
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		if err := fn(line, data); err != nil {
			return err
		}
	}

	return scanner.Err()
}
