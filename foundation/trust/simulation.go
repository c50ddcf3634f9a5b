package trust

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/looplab/fsm"
)

// EventHandler defines a function that is called when events
// occur in the processing of rounds.
type EventHandler func(v string, args ...any)

// Set of round phases and the events moving between them. Every node sends
// before any node receives.
const (
	phaseReady     = "ready"
	phaseBroadcast = "broadcast"
	phaseDone      = "done"

	eventBroadcast = "broadcast"
	eventDeliver   = "deliver"
	eventFinish    = "finish"
)

// SimulationConfig represents the configuration of a network run.
// Followees and Behaviors are drawn at random from the params when they are
// not provided. Followees[i][j] means node i follows node j.
type SimulationConfig struct {
	NumNodes  int
	Params    Params
	NumTx     int
	Seed      uint64
	Followees [][]bool
	Behaviors []Behavior
	EvHandler EventHandler
}

// Result is what a run produced.
type Result struct {
	Outputs   []TxSet   // Known set of every node after the final round.
	Consensus bool      // Every compliant node ended with the same set.
	Suspects  []peer.ID // Nodes that forwarded nothing or forwarded unseeded ids.
}

// Simulation drives the nodes of a network through the rounds.
type Simulation struct {
	evHandler EventHandler
	rounds    int
	rng       *rand.Rand
	nodes     []Node
	behaviors []Behavior
	followers [][]peer.ID
	universe  TxSet
	seeds     []TxSet
	phase     *fsm.FSM
}

// NewSimulation constructs the nodes, the follow graph and the seed
// transactions for a run.
func NewSimulation(cfg SimulationConfig) (*Simulation, error) {
	if cfg.NumNodes <= 0 {
		return nil, errors.New("at least one node is required")
	}
	if cfg.NumTx < 0 {
		return nil, fmt.Errorf("negative number of transactions %d", cfg.NumTx)
	}
	if cfg.Params.NumRounds <= 0 {
		return nil, errors.New("at least one round is required")
	}
	if cfg.Followees != nil && len(cfg.Followees) != cfg.NumNodes {
		return nil, fmt.Errorf("followees for %d nodes, exp %d", len(cfg.Followees), cfg.NumNodes)
	}
	if cfg.Behaviors != nil && len(cfg.Behaviors) != cfg.NumNodes {
		return nil, fmt.Errorf("behaviors for %d nodes, exp %d", len(cfg.Behaviors), cfg.NumNodes)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	followees := cfg.Followees
	if followees == nil {
		followees = make([][]bool, cfg.NumNodes)
		for i := range followees {
			followees[i] = make([]bool, cfg.NumNodes)
			for j := range followees[i] {
				followees[i][j] = i != j && rng.Float64() < cfg.Params.PGraph
			}
		}
	}

	behaviors := cfg.Behaviors
	if behaviors == nil {
		malicious := []Behavior{Silent, Flooding, Tampering}
		behaviors = make([]Behavior, cfg.NumNodes)
		for i := range behaviors {
			if rng.Float64() < cfg.Params.PMalicious {
				behaviors[i] = malicious[rng.IntN(len(malicious))]
			}
		}
	}

	nodes := make([]Node, cfg.NumNodes)
	followers := make([][]peer.ID, cfg.NumNodes)
	for i := range nodes {
		node, err := New(behaviors[i], peer.ID(i), cfg.Params)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		nodes[i] = node

		set := peer.NewSet()
		for j, follows := range followees[i] {
			if follows {
				set.Add(peer.ID(j))
				followers[j] = append(followers[j], peer.ID(i))
			}
		}
		node.SetFollowees(set)
	}

	// Seeded ids never carry the fabricated bit.
	universe := make(TxSet, cfg.NumTx)
	for len(universe) < cfg.NumTx {
		universe.Add(TxID(rng.Uint64N(uint64(fabricated))))
	}

	seeds := make([]TxSet, cfg.NumNodes)
	for i := range seeds {
		seeds[i] = TxSet{}
		for _, id := range universe.Sorted() {
			if rng.Float64() < cfg.Params.PTxDistribution {
				seeds[i].Add(id)
			}
		}
	}

	phase := fsm.NewFSM(
		phaseReady,
		fsm.Events{
			{Name: eventBroadcast, Src: []string{phaseReady}, Dst: phaseBroadcast},
			{Name: eventDeliver, Src: []string{phaseBroadcast}, Dst: phaseReady},
			{Name: eventFinish, Src: []string{phaseReady}, Dst: phaseDone},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				ev("trust: phase: %s -> %s", e.Src, e.Dst)
			},
		},
	)

	sim := Simulation{
		evHandler: ev,
		rounds:    cfg.Params.NumRounds,
		rng:       rng,
		nodes:     nodes,
		behaviors: behaviors,
		followers: followers,
		universe:  universe,
		seeds:     seeds,
		phase:     phase,
	}

	return &sim, nil
}

// Nodes returns the nodes taking part in the run.
func (s *Simulation) Nodes() []Node {
	return slices.Clone(s.nodes)
}

// Universe returns every seeded id.
func (s *Simulation) Universe() TxSet {
	return s.universe.Clone()
}

// Seeded returns every id given to at least one node.
func (s *Simulation) Seeded() TxSet {
	seeded := TxSet{}
	for _, seed := range s.seeds {
		for id := range seed {
			seeded.Add(id)
		}
	}
	return seeded
}

// Run seeds the nodes and drives them through every round. A simulation can
// only be run once.
func (s *Simulation) Run() (Result, error) {
	ctx := context.Background()

	if !s.phase.Is(phaseReady) {
		return Result{}, fmt.Errorf("simulation in phase %q", s.phase.Current())
	}

	for i, node := range s.nodes {
		node.SetPendingTransactions(s.seeds[i].Clone())
	}

	forwarded := make([]TxSet, len(s.nodes))
	for i := range forwarded {
		forwarded[i] = TxSet{}
	}

	for round := range s.rounds {
		if err := s.phase.Event(ctx, eventBroadcast); err != nil {
			return Result{}, fmt.Errorf("round %d: %w", round, err)
		}

		// Every node sends before anyone receives.
		inbox := make([][]Candidate, len(s.nodes))
		for i, node := range s.nodes {
			sent := node.SendToFollowers()
			for id := range sent {
				forwarded[i].Add(id)
				for _, f := range s.followers[i] {
					inbox[f] = append(inbox[f], Candidate{Tx: id, Sender: peer.ID(i)})
				}
			}
		}

		if err := s.phase.Event(ctx, eventDeliver); err != nil {
			return Result{}, fmt.Errorf("round %d: %w", round, err)
		}

		// Nodes can't rely on the order candidates arrive in. Sorting first
		// keeps a seeded run repeatable.
		for i, node := range s.nodes {
			candidates := inbox[i]
			slices.SortFunc(candidates, compareCandidate)
			s.rng.Shuffle(len(candidates), func(a, b int) {
				candidates[a], candidates[b] = candidates[b], candidates[a]
			})
			node.ReceiveFromFollowees(candidates)
		}

		s.evHandler("trust: Run: round %d of %d complete", round+1, s.rounds)
	}

	if err := s.phase.Event(ctx, eventFinish); err != nil {
		return Result{}, err
	}

	return s.result(forwarded), nil
}

// result collects the outputs and flags the suspect nodes.
func (s *Simulation) result(forwarded []TxSet) Result {
	res := Result{
		Outputs:   make([]TxSet, len(s.nodes)),
		Consensus: true,
	}

	var reference TxSet
	for i, node := range s.nodes {
		res.Outputs[i] = node.Known()

		if s.behaviors[i] == Compliant {
			switch {
			case reference == nil:
				reference = res.Outputs[i]
			case !equal(reference, res.Outputs[i]):
				res.Consensus = false
			}
		}

		if s.suspect(forwarded[i]) {
			res.Suspects = append(res.Suspects, peer.ID(i))
		}
	}

	return res
}

// suspect reports whether a node forwarded nothing or forwarded an id that
// was never seeded.
func (s *Simulation) suspect(forwarded TxSet) bool {
	if len(forwarded) == 0 {
		return true
	}

	for id := range forwarded {
		if !s.universe.Contains(id) {
			return true
		}
	}

	return false
}

func equal(a, b TxSet) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b.Contains(id) {
			return false
		}
	}
	return true
}
