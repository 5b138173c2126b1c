package connectfour

import (
	"montecarlo/game"
	"strings"

	"github.com/pkg/errors"
)

const (
	Rows    = 6
	Columns = 7
	Connect = 4 // Pieces in a row needed to win
)

// cell holds 0 for empty, otherwise the owning player + 1
type cell int8

// State is a value type: the board array is copied on every Play.
type State struct {
	board   [Rows][Columns]cell
	heights [Columns]int
	player  game.Player
	winner  game.Player
	moves   int
}

var _ game.State[int] = (*State)(nil)

// New returns an empty board with player 0 to move.
func New() *State {
	return &State{player: 0, winner: game.NoPlayer}
}

func (s *State) Player() game.Player {
	if s.IsTerminal() {
		return game.NoPlayer
	}
	return s.player
}

func (s *State) LegalActions() []int {
	if s.IsTerminal() {
		return []int{}
	}
	columns := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if s.heights[col] < Rows {
			columns = append(columns, col)
		}
	}
	return columns
}

func (s *State) Play(column int) (game.State[int], error) {
	if s.IsTerminal() {
		return nil, errors.Wrapf(game.ErrIllegalAction, "column %d: game is over", column)
	}
	if column < 0 || column >= Columns {
		return nil, errors.Wrapf(game.ErrIllegalAction, "column %d out of range", column)
	}
	if s.heights[column] >= Rows {
		return nil, errors.Wrapf(game.ErrIllegalAction, "column %d is full", column)
	}

	next := *s
	row := next.heights[column]
	next.board[row][column] = cell(s.player + 1)
	next.heights[column]++
	next.moves++
	if next.connects(row, column) {
		next.winner = s.player
	}
	next.player = 1 - s.player
	return &next, nil
}

func (s *State) IsTerminal() bool {
	return s.winner != game.NoPlayer || s.moves == Rows*Columns
}

// Rewards returns +1 for the winner and -1 for the loser, or 0 each on a draw.
func (s *State) Rewards() (game.Rewards, error) {
	if !s.IsTerminal() {
		return nil, errors.Wrapf(game.ErrNotTerminal, "%d of %d cells filled", s.moves, Rows*Columns)
	}
	if s.winner == game.NoPlayer {
		return game.Rewards{0: 0, 1: 0}, nil
	}
	return game.Rewards{s.winner: 1, 1 - s.winner: -1}, nil
}

// Winner returns game.NoPlayer while the game is running or after a draw.
func (s *State) Winner() game.Player {
	return s.winner
}

// At returns the owner of the piece at row (0 is the bottom) and column.
func (s *State) At(row, column int) game.Player {
	return game.Player(s.board[row][column]) - 1
}

// connects checks the four lines through the piece at (row, column).
func (s *State) connects(row, column int) bool {
	directions := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	piece := s.board[row][column]
	for _, d := range directions {
		count := 1 + s.count(row, column, d[0], d[1], piece) + s.count(row, column, -d[0], -d[1], piece)
		if count >= Connect {
			return true
		}
	}
	return false
}

func (s *State) count(row, column, dr, dc int, piece cell) int {
	n := 0
	for r, c := row+dr, column+dc; r >= 0 && r < Rows && c >= 0 && c < Columns; r, c = r+dr, c+dc {
		if s.board[r][c] != piece {
			break
		}
		n++
	}
	return n
}

func (s *State) String() string {
	var b strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			switch s.At(row, col) {
			case 0:
				b.WriteString("| X ")
			case 1:
				b.WriteString("| O ")
			default:
				b.WriteString("|   ")
			}
		}
		b.WriteString("|\n")
	}
	for col := 0; col < Columns; col++ {
		b.WriteString("  ")
		b.WriteByte(byte('0' + col))
		b.WriteString(" ")
	}
	b.WriteString("\n")
	return b.String()
}
