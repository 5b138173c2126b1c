package agent

import (
	"context"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"montecarlo/searcher"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type randomAgent[A comparable] struct {
	state game.State[A]
	rand  *rand.Rand
}

// NewRandomAgent returns a baseline agent playing uniformly random legal moves.
func NewRandomAgent[A comparable](state game.State[A], r *rand.Rand) Agent[A] {
	return &randomAgent[A]{state: state, rand: r}
}

func (a *randomAgent[A]) FindMove(ctx context.Context) (A, metrics.SearchMetric, error) {
	move, err := searcher.UniformRollout(a.state, a.rand)
	if err != nil {
		return move, metrics.SearchMetric{}, errors.WithMessage(err, "random agent")
	}
	return move, metrics.SearchMetric{}, nil
}

func (a *randomAgent[A]) Observe(action A) error {
	next, err := a.state.Play(action)
	if err != nil {
		return errors.WithMessage(err, "random agent")
	}
	a.state = next
	return nil
}
