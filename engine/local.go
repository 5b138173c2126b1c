package engine

import (
	"context"
	"montecarlo/experiments/metrics"
	"montecarlo/game"
	"montecarlo/searcher/agent"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrMissingAgent = errors.New("no agent for player")

// Local runs a game in process. Every move is checked against the rules
// before it is applied and then shown to every agent.
type Local[A comparable] struct {
	state    game.State[A]
	agents   map[game.Player]agent.Agent[A]
	players  []game.Player
	maxMoves int
}

func NewLocalEngine[A comparable](state game.State[A], agents map[game.Player]agent.Agent[A]) (*Local[A], error) {
	if state == nil {
		return nil, errors.New("nil initial state")
	}
	if len(agents) < 2 {
		return nil, errors.Errorf("need at least two agents, got %d", len(agents))
	}

	players := make([]game.Player, 0, len(agents))
	for p := range agents {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })

	return &Local[A]{
		state:    state,
		agents:   agents,
		players:  players,
		maxMoves: MaxMoves,
	}, nil
}

// SetMaxMoves caps the number of moves before a game is abandoned.
func (e *Local[A]) SetMaxMoves(n int) {
	if n > 0 {
		e.maxMoves = n
	}
}

// State returns the current position.
func (e *Local[A]) State() game.State[A] {
	return e.state
}

// Run plays until the game is over. An abandoned game has no rewards and no
// winner.
func (e *Local[A]) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.state.Player(),
		Winner:         game.NoPlayer,
		StartTime:      time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	log.Debug().Msgf("player %d is starting", gameMetric.StartingPlayer)

	step := 1
	for ; !e.state.IsTerminal() && step <= e.maxMoves; step++ {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, errors.Wrapf(err, "game stopped at move %d", step)
		}

		player := e.state.Player()
		a, ok := e.agents[player]
		if !ok {
			return gameMetric, moveMetrics, errors.Wrapf(ErrMissingAgent, "player %d at move %d", player, step)
		}

		move, searchMetric, err := a.FindMove(ctx)
		if err != nil {
			return gameMetric, moveMetrics, errors.WithMessagef(err, "player %d at move %d", player, step)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			SearchMetric: searchMetric,
		})

		if err := e.play(move); err != nil {
			return gameMetric, moveMetrics, errors.WithMessagef(err, "player %d at move %d", player, step)
		}
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step - 1

	if !e.state.IsTerminal() {
		log.Warn().Msgf("game abandoned after %d moves", gameMetric.TotalMoves)
		return gameMetric, moveMetrics, nil
	}

	rewards, err := e.state.Rewards()
	if err != nil {
		return gameMetric, moveMetrics, errors.WithMessage(err, "final rewards")
	}
	gameMetric.Rewards = rewards
	gameMetric.Winner = metrics.Winner(rewards)
	log.Debug().Msgf("game over after %d moves with rewards %v", gameMetric.TotalMoves, rewards)
	return gameMetric, moveMetrics, nil
}

// play validates move, applies it and broadcasts it to all agents.
func (e *Local[A]) play(move A) error {
	if !game.IsLegal(e.state, move) {
		return errors.Wrapf(game.ErrIllegalAction, "move %v", move)
	}
	next, err := e.state.Play(move)
	if err != nil {
		return err
	}
	e.state = next

	for _, p := range e.players {
		if err := e.agents[p].Observe(move); err != nil {
			return errors.WithMessagef(err, "agent of player %d rejected %v", p, move)
		}
	}
	return nil
}
