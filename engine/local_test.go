package engine

import (
	"context"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"montecarlo/game/connectfour"
	"montecarlo/game/ninetynine"
	"montecarlo/searcher"
	"montecarlo/searcher/agent"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// cheater always answers with the same move
type cheater struct {
	move int
}

func (c cheater) FindMove(ctx context.Context) (int, metrics.SearchMetric, error) {
	return c.move, metrics.SearchMetric{}, nil
}

func (c cheater) Observe(action int) error {
	return nil
}

func randomAgents(state game.State[int], seed uint64) map[game.Player]agent.Agent[int] {
	return map[game.Player]agent.Agent[int]{
		0: agent.NewRandomAgent(state, rand.New(rand.NewSource(seed))),
		1: agent.NewRandomAgent(state, rand.New(rand.NewSource(seed+1))),
	}
}

func TestNewLocalEngine(t *testing.T) {
	t.Run("needs at least two agents", func(t *testing.T) {
		state := connectfour.New()
		agents := map[game.Player]agent.Agent[int]{0: agent.NewRandomAgent[int](state, rand.New(rand.NewSource(1)))}

		_, err := NewLocalEngine[int](state, agents)

		require.Error(t, err)
	})
}

func TestLocalRun(t *testing.T) {
	t.Run("random agents finish a game", func(t *testing.T) {
		state := connectfour.New()
		e, err := NewLocalEngine[int](state, randomAgents(state, 1))
		require.NoError(t, err)

		gameMetric, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.True(t, e.State().IsTerminal(), "Game should be over")
		require.Equal(t, game.Player(0), gameMetric.StartingPlayer)
		require.Equal(t, len(moveMetrics), gameMetric.TotalMoves, "One metric per move")
		require.Len(t, gameMetric.Rewards, 2, "Both players should get a reward")
		require.Equal(t, metrics.Winner(gameMetric.Rewards), gameMetric.Winner)
		require.False(t, gameMetric.EndTime.Before(gameMetric.StartTime))
		for i, mm := range moveMetrics {
			require.Equal(t, i+1, mm.Step)
			require.Equal(t, game.Player(i%2), mm.Player, "Players should alternate")
		}
	})

	t.Run("search agent against random agent", func(t *testing.T) {
		state := connectfour.New()
		m, err := searcher.NewMCTS[int](state, searcher.WithIterations(100), searcher.WithSeed(2), searcher.WithMetrics())
		require.NoError(t, err)
		agents := randomAgents(state, 3)
		agents[0] = agent.NewEvaluationAgent(m)
		e, err := NewLocalEngine[int](state, agents)
		require.NoError(t, err)

		_, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.True(t, e.State().IsTerminal())
		for _, mm := range moveMetrics {
			if mm.Player == 0 {
				require.Equal(t, 100, mm.Episodes, "Search agent should report its episodes")
			}
		}
		require.True(t, moveMetrics[0].IsTreeReset, "First search starts from a fresh tree")
	})

	t.Run("three players", func(t *testing.T) {
		r := rand.New(rand.NewSource(4))
		var state game.State[ninetynine.Card] = ninetynine.New(r)
		agents := map[game.Player]agent.Agent[ninetynine.Card]{}
		for p := game.Player(0); p < ninetynine.Players; p++ {
			agents[p] = agent.NewRandomAgent(state, rand.New(rand.NewSource(uint64(p))))
		}
		e, err := NewLocalEngine(state, agents)
		require.NoError(t, err)

		gameMetric, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Len(t, moveMetrics, ninetynine.Players*ninetynine.Tricks, "Every card should be played")
		require.Len(t, gameMetric.Rewards, ninetynine.Players)
	})

	t.Run("illegal move", func(t *testing.T) {
		state := connectfour.New()
		agents := randomAgents(state, 5)
		agents[0] = cheater{move: 7}
		e, err := NewLocalEngine[int](state, agents)
		require.NoError(t, err)

		_, _, err = e.Run(context.Background())

		require.True(t, errors.Is(err, game.ErrIllegalAction), "Engine should reject an illegal move")
		require.Equal(t, game.Player(0), e.State().Player(), "Position should not change")
	})

	t.Run("missing agent", func(t *testing.T) {
		state := connectfour.New()
		agents := randomAgents(state, 6)
		agents[2] = agents[1]
		delete(agents, 1)
		e, err := NewLocalEngine[int](state, agents)
		require.NoError(t, err)

		_, moveMetrics, err := e.Run(context.Background())

		require.True(t, errors.Is(err, ErrMissingAgent))
		require.Len(t, moveMetrics, 1, "Player 0 should have moved once")
	})

	t.Run("abandoned game", func(t *testing.T) {
		state := connectfour.New()
		e, err := NewLocalEngine[int](state, randomAgents(state, 7))
		require.NoError(t, err)
		e.SetMaxMoves(5)

		gameMetric, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Len(t, moveMetrics, 5)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Nil(t, gameMetric.Rewards, "Abandoned game should have no rewards")
		require.Equal(t, game.NoPlayer, gameMetric.Winner)
	})

	t.Run("cancelled context", func(t *testing.T) {
		state := connectfour.New()
		e, err := NewLocalEngine[int](state, randomAgents(state, 8))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err = e.Run(ctx)

		require.True(t, errors.Is(err, context.Canceled))
	})
}
