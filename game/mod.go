package game

import "github.com/pkg/errors"

// Player identifies a seat at the table. Seats are numbered from 0.
type Player int

// NoPlayer is returned by State.Player when nobody is to move.
const NoPlayer Player = -1

// Rewards maps each player to their outcome of a finished game.
type Rewards map[Player]float64

var (
	ErrIllegalAction = errors.New("illegal action")
	ErrNotTerminal   = errors.New("game is not over")
)

// State should be immutable - Play always returns a new state and leaves the
// receiver untouched.
type State[A comparable] interface {
	// Player returns the player to move, or NoPlayer once the game is over
	Player() Player
	// LegalActions returns the actions available to Player, empty iff IsTerminal
	LegalActions() []A
	// Play fails with ErrIllegalAction if action is not legal here
	Play(action A) (State[A], error)
	IsTerminal() bool
	// Rewards fails with ErrNotTerminal unless IsTerminal
	Rewards() (Rewards, error)
}

func IsLegal[A comparable](state State[A], action A) bool {
	for _, a := range state.LegalActions() {
		if a == action {
			return true
		}
	}
	return false
}
