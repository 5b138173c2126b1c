package searcher

import (
	"montecarlo/game"

	"github.com/pkg/errors"
)

type step string

const (
	left  step = "left"
	right step = "right"
)

// lineState is a row of four cells. Players 0 and 1 take turns moving a
// shared token one cell; whoever moves it onto either end cell wins.
type lineState struct {
	cell   int
	player game.Player
	moves  int
}

func newLine() *lineState {
	return &lineState{cell: 1, player: 0}
}

func (s *lineState) Player() game.Player {
	if s.IsTerminal() {
		return game.NoPlayer
	}
	return s.player
}

func (s *lineState) LegalActions() []step {
	if s.IsTerminal() {
		return []step{}
	}
	return []step{left, right}
}

func (s *lineState) Play(action step) (game.State[step], error) {
	if s.IsTerminal() {
		return nil, errors.Wrap(game.ErrIllegalAction, "token already home")
	}
	next := *s
	switch action {
	case left:
		next.cell--
	case right:
		next.cell++
	default:
		return nil, errors.Wrapf(game.ErrIllegalAction, "unknown step %q", action)
	}
	next.moves++
	if !next.IsTerminal() {
		next.player = 1 - s.player
	}
	return &next, nil
}

func (s *lineState) IsTerminal() bool {
	return s.cell == 0 || s.cell == 3
}

// Rewards credits +1 to the player who made the last move.
func (s *lineState) Rewards() (game.Rewards, error) {
	if !s.IsTerminal() {
		return nil, errors.WithStack(game.ErrNotTerminal)
	}
	return game.Rewards{s.player: 1, 1 - s.player: -1}, nil
}

// onePlyState has a single action that ends the game with fixed rewards.
type onePlyState struct {
	player  game.Player
	rewards game.Rewards
	done    bool
}

func (s *onePlyState) Player() game.Player {
	if s.done {
		return game.NoPlayer
	}
	return s.player
}

func (s *onePlyState) LegalActions() []int {
	if s.done {
		return []int{}
	}
	return []int{0}
}

func (s *onePlyState) Play(action int) (game.State[int], error) {
	if s.done || action != 0 {
		return nil, errors.WithStack(game.ErrIllegalAction)
	}
	next := *s
	next.done = true
	return &next, nil
}

func (s *onePlyState) IsTerminal() bool {
	return s.done
}

func (s *onePlyState) Rewards() (game.Rewards, error) {
	if !s.done {
		return nil, errors.WithStack(game.ErrNotTerminal)
	}
	return s.rewards, nil
}

// stuckState claims to be running but offers no actions.
type stuckState struct{}

func (stuckState) Player() game.Player               { return 0 }
func (stuckState) LegalActions() []int               { return nil }
func (stuckState) Play(int) (game.State[int], error) { return nil, errors.WithStack(game.ErrIllegalAction) }
func (stuckState) IsTerminal() bool                  { return false }
func (stuckState) Rewards() (game.Rewards, error)    { return nil, errors.WithStack(game.ErrNotTerminal) }

// relayState passes a single action around the table until plies moves
// have been made, then pays out fixed rewards.
type relayState struct {
	turn    int
	seats   int
	plies   int
	rewards game.Rewards
}

func (s *relayState) Player() game.Player {
	if s.IsTerminal() {
		return game.NoPlayer
	}
	return game.Player(s.turn % s.seats)
}

func (s *relayState) LegalActions() []int {
	if s.IsTerminal() {
		return []int{}
	}
	return []int{0}
}

func (s *relayState) Play(action int) (game.State[int], error) {
	if s.IsTerminal() || action != 0 {
		return nil, errors.WithStack(game.ErrIllegalAction)
	}
	next := *s
	next.turn++
	return &next, nil
}

func (s *relayState) IsTerminal() bool {
	return s.turn >= s.plies
}

func (s *relayState) Rewards() (game.Rewards, error) {
	if !s.IsTerminal() {
		return nil, errors.WithStack(game.ErrNotTerminal)
	}
	return s.rewards, nil
}
