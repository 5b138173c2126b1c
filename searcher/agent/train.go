package agent

import (
	"context"
	"math"
	"montecarlo/experiments/metrics"
	"montecarlo/searcher"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type trainingAgent[A comparable] struct {
	mcts        *searcher.MCTS[A]
	temperature float64
	rand        *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play. It samples moves in
// proportion to visits^(1/temperature) instead of always playing the most
// visited one.
func NewTrainingAgent[A comparable](mcts *searcher.MCTS[A], temperature float64, r *rand.Rand) (Agent[A], error) {
	if temperature <= 0 {
		return nil, errors.Errorf("temperature must be positive, got %v", temperature)
	}
	return trainingAgent[A]{mcts: mcts, temperature: temperature, rand: r}, nil
}

func (a trainingAgent[A]) FindMove(ctx context.Context) (A, metrics.SearchMetric, error) {
	var none A
	metric, err := a.mcts.Search(ctx)
	if err != nil {
		return none, metric, errors.WithMessage(err, "training agent")
	}

	children := a.mcts.Children()
	if len(children) == 0 {
		return none, metric, errors.Wrap(searcher.ErrNoMoves, "training agent")
	}
	visits := make([]float64, len(children))
	for i, child := range children {
		visits[i] = float64(child.Visits)
	}
	probs := adjustTemperature(visits, a.temperature)
	return children[sample(probs, a.rand)].Action, metric, nil
}

func (a trainingAgent[A]) Observe(action A) error {
	return a.mcts.Play(action)
}

func adjustTemperature(visits []float64, temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(visits))
	for i, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[i] = prob
	}
	if sum == 0 {
		for i := range adjusted {
			adjusted[i] = 1 / float64(len(adjusted))
		}
		return adjusted
	}
	// Normalize
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func sample(probs []float64, r *rand.Rand) int {
	sampled := r.Float64()
	cumulative := 0.0
	for i, prob := range probs {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(probs) - 1 // Fallback in case of rounding errors
}
