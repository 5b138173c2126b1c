package agent

import (
	"context"
	"montecarlo/experiments/metrics"
	"montecarlo/searcher"

	"github.com/pkg/errors"
)

type evaluationAgent[A comparable] struct {
	mcts *searcher.MCTS[A]
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent[A comparable](mcts *searcher.MCTS[A]) Agent[A] {
	return evaluationAgent[A]{mcts: mcts}
}

func (a evaluationAgent[A]) FindMove(ctx context.Context) (A, metrics.SearchMetric, error) {
	var none A
	metric, err := a.mcts.Search(ctx)
	if err != nil {
		return none, metric, errors.WithMessage(err, "evaluation agent")
	}
	move, err := a.mcts.BestMove()
	if err != nil {
		return none, metric, errors.WithMessage(err, "evaluation agent")
	}
	return move, metric, nil
}

func (a evaluationAgent[A]) Observe(action A) error {
	return a.mcts.Play(action)
}
