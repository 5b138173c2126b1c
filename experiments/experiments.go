package experiments

import (
	"context"
	"fmt"
	"montecarlo/engine"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"montecarlo/game/connectfour"
	"montecarlo/game/ninetynine"
	"montecarlo/searcher"
	"montecarlo/searcher/agent"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

const (
	KindMCTS     = "mcts"
	KindTraining = "training"
	KindRandom   = "random"
)

type gameFunc func(ctx context.Context, seats []metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error)

type searchFunc func(ctx context.Context, budget metrics.AgentConfig, seed uint64) (metrics.SearchMetric, error)

type registration struct {
	players int
	play    gameFunc
	search  searchFunc // one search from the opening position
}

var games = map[string]registration{
	"connectfour": {
		players: 2,
		play: func(ctx context.Context, seats []metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
			return playGame[int](ctx, connectfour.New(), seats, seed)
		},
		search: func(ctx context.Context, budget metrics.AgentConfig, seed uint64) (metrics.SearchMetric, error) {
			return searchOnce[int](ctx, connectfour.New(), budget, seed)
		},
	},
	"ninetynine": {
		players: ninetynine.Players,
		play: func(ctx context.Context, seats []metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
			r := rand.New(rand.NewSource(seed))
			return playGame[ninetynine.Card](ctx, ninetynine.New(r), seats, r.Uint64())
		},
		search: func(ctx context.Context, budget metrics.AgentConfig, seed uint64) (metrics.SearchMetric, error) {
			r := rand.New(rand.NewSource(seed))
			return searchOnce[ninetynine.Card](ctx, ninetynine.New(r), budget, r.Uint64())
		},
	},
}

// Games lists the registered game names.
func Games() []string {
	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Summary struct {
	RunID  string
	Dir    string
	Games  int
	Agents []metrics.AgentSummary
}

type job struct {
	id      int
	matchup int
	seed    uint64
}

// Run plays cfg.NumGames games for every matchup, at most cfg.Parallelism
// at a time, and writes the records under a fresh run directory.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	registered := games[cfg.Game]
	agents := map[int]metrics.AgentConfig{}
	for _, config := range cfg.Agents {
		agents[config.ID] = config
	}

	runID := uuid.NewString()
	setup := metrics.Setup{
		RunID:     runID,
		Name:      cfg.Name,
		Game:      cfg.Game,
		Seed:      cfg.Seed,
		Agents:    cfg.Agents,
		MatchUps:  cfg.MatchUps,
		NumGames:  cfg.NumGames,
		StartTime: time.Now(),
	}

	// Seeds are drawn up front so results do not depend on scheduling
	seeds := rand.New(rand.NewSource(cfg.Seed))
	jobs := []job{}
	for mi := range cfg.MatchUps {
		for i := 0; i < cfg.NumGames; i++ {
			jobs = append(jobs, job{id: len(jobs), matchup: mi, seed: seeds.Uint64()})
		}
	}

	log.Info().Msgf("starting %s experiment %s with %d games...", cfg.Name, runID, len(jobs))

	gameRecords := make([]metrics.GameRecord, len(jobs))
	moveRecords := make([][]metrics.MoveRecord, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for _, j := range jobs {
		matchup := cfg.MatchUps[j.matchup]
		seats := make([]metrics.AgentConfig, len(matchup))
		for seat, id := range matchup {
			seats[seat] = agents[id]
		}

		g.Go(func() error {
			gameMetric, moveMetrics, err := registered.play(gctx, seats, j.seed)
			if err != nil {
				return errors.WithMessagef(err, "game %d of matchup %d", j.id, j.matchup)
			}

			gameRecords[j.id] = metrics.GameRecord{ID: j.id, Agents: matchup, GameMetric: gameMetric}
			records := make([]metrics.MoveRecord, len(moveMetrics))
			for i, mm := range moveMetrics {
				records[i] = metrics.MoveRecord{Game: j.id, Agent: matchup[mm.Player], MoveMetric: mm}
			}
			moveRecords[j.id] = records

			log.Info().Msgf("completed game %d of %d (matchup %d) with winner: %d", j.id+1, len(jobs), j.matchup+1, gameMetric.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	setup.EndTime = time.Now()
	setup.Duration = setup.EndTime.Sub(setup.StartTime)
	log.Info().Msgf("completed %s experiment in %s", cfg.Name, setup.Duration)

	moves := []metrics.MoveRecord{}
	for _, records := range moveRecords {
		moves = append(moves, records...)
	}

	dir := filepath.Join(cfg.OutDir, fmt.Sprintf("%s_%s", cfg.Name, runID))
	writer, err := metrics.NewWriter(dir)
	if err != nil {
		return Summary{}, err
	}
	if err := writer.WriteAll(setup, gameRecords, moves); err != nil {
		return Summary{}, errors.Wrap(err, "failed to store experiment results")
	}
	log.Info().Msgf("stored experiment results in %s", dir)

	return Summary{
		RunID:  runID,
		Dir:    dir,
		Games:  len(gameRecords),
		Agents: metrics.Summarize(gameRecords, moves),
	}, nil
}

// playGame runs a single game, seating one agent per player in seat order.
func playGame[A comparable](ctx context.Context, state game.State[A], seats []metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	r := rand.New(rand.NewSource(seed))
	agents := map[game.Player]agent.Agent[A]{}
	for seat, config := range seats {
		a, err := newAgent(state, config, r.Uint64())
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		agents[game.Player(seat)] = a
	}

	e, err := engine.NewLocalEngine(state, agents)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	return e.Run(ctx)
}

func newAgent[A comparable](state game.State[A], config metrics.AgentConfig, seed uint64) (agent.Agent[A], error) {
	if config.Kind == KindRandom {
		return agent.NewRandomAgent(state, rand.New(rand.NewSource(seed))), nil
	}

	m, err := searcher.NewMCTS(state, searchOptions(config, seed)...)
	if err != nil {
		return nil, errors.WithMessagef(err, "agent %d", config.ID)
	}
	switch config.Kind {
	case KindMCTS:
		return agent.NewEvaluationAgent(m), nil
	case KindTraining:
		return agent.NewTrainingAgent(m, config.Temperature, rand.New(rand.NewSource(seed+1)))
	}
	return nil, errors.WithMessagef(ErrInvalidConfig, "agent %d has unknown kind %q", config.ID, config.Kind)
}

func searchOptions(config metrics.AgentConfig, seed uint64) []searcher.Option {
	options := []searcher.Option{searcher.WithSeed(seed), searcher.WithMetrics()}

	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Explore > 0 {
		options = append(options, searcher.WithExplore(config.Explore))
	}
	return options
}
