package agent

import (
	"context"
	"montecarlo/experiments/metrics"
)

type Agent[A comparable] interface {
	// FindMove returns the agent's move in its current position and the
	// metrics of the search behind it (zero if it does not search)
	FindMove(ctx context.Context) (A, metrics.SearchMetric, error)
	// Observe advances the agent's position by a move played by anyone
	Observe(action A) error
}
