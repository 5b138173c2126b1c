package experiments

import (
	"context"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"montecarlo/searcher"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type ThroughputResult struct {
	Budget            metrics.AgentConfig
	Searches          []metrics.SearchMetric
	EpisodesPerSecond float64
	StdDev            float64
}

// Throughput measures how many episodes a search completes from the opening
// position of the game, repeating every budget a number of times.
func Throughput(ctx context.Context, gameName string, budgets []metrics.AgentConfig, repeats int, seed uint64) ([]ThroughputResult, error) {
	registered, ok := games[gameName]
	if !ok {
		return nil, errors.WithMessagef(ErrInvalidConfig, "unknown game %q", gameName)
	}
	if repeats <= 0 {
		return nil, errors.WithMessagef(ErrInvalidConfig, "repeats must be positive, got %d", repeats)
	}

	log.Info().Msgf("starting throughput experiment on %s...", gameName)

	r := rand.New(rand.NewSource(seed))
	results := make([]ThroughputResult, 0, len(budgets))
	for _, budget := range budgets {
		budget.Kind = KindMCTS
		if err := validateAgent(budget); err != nil {
			return nil, err
		}
		rates := make([]float64, 0, repeats)
		result := ThroughputResult{Budget: budget}
		for i := 0; i < repeats; i++ {
			metric, err := registered.search(ctx, budget, r.Uint64())
			if err != nil {
				return nil, errors.WithMessagef(err, "search %d of budget %d", i+1, budget.ID)
			}
			result.Searches = append(result.Searches, metric)
			if metric.Duration > 0 {
				rates = append(rates, float64(metric.Episodes)/metric.Duration.Seconds())
			}
		}
		result.EpisodesPerSecond, result.StdDev = metrics.MeanStdDev(rates)
		results = append(results, result)

		log.Info().Msgf("budget %d: %.0f episodes per second", budget.ID, result.EpisodesPerSecond)
	}

	log.Info().Msg("completed throughput experiment")
	return results, nil
}

func searchOnce[A comparable](ctx context.Context, state game.State[A], budget metrics.AgentConfig, seed uint64) (metrics.SearchMetric, error) {
	m, err := searcher.NewMCTS(state, searchOptions(budget, seed)...)
	if err != nil {
		return metrics.SearchMetric{}, err
	}
	return m.Search(ctx)
}
