package searcher

import (
	"montecarlo/game"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// RolloutPolicy picks the next action of a playout. It is only consulted
// outside the tree.
type RolloutPolicy[A comparable] func(state game.State[A], r *rand.Rand) (A, error)

// UniformRollout picks a legal action uniformly at random.
func UniformRollout[A comparable](state game.State[A], r *rand.Rand) (A, error) {
	actions := state.LegalActions()
	if len(actions) == 0 {
		var none A
		return none, errors.WithStack(ErrNoLegalActions)
	}
	return actions[r.Intn(len(actions))], nil
}

// rollout plays from state to the end of the game and returns its rewards.
func (m *MCTS[A]) rollout(state game.State[A]) (game.Rewards, error) {
	depth := 0
	for !state.IsTerminal() {
		action, err := m.policy(state, m.rand)
		if err != nil {
			return nil, errors.WithMessagef(err, "rollout at depth %d", depth)
		}
		state, err = state.Play(action)
		if err != nil {
			return nil, errors.WithMessagef(err, "rollout at depth %d", depth)
		}
		depth++
	}
	m.metrics.AddRollout()

	rewards, err := state.Rewards()
	if err != nil {
		return nil, errors.WithMessage(err, "rollout")
	}
	return rewards, nil
}
