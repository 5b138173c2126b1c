package connectfour

import (
	"montecarlo/game"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, columns ...int) *State {
	t.Helper()
	var state game.State[int] = New()
	for _, col := range columns {
		next, err := state.Play(col)
		require.NoError(t, err, "Column %d should be playable", col)
		state = next
	}
	return state.(*State)
}

func TestNew(t *testing.T) {
	t.Run("empty board with player 0 to move", func(t *testing.T) {
		s := New()

		require.Equal(t, game.Player(0), s.Player(), "Player 0 should move first")
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, s.LegalActions(), "Every column should be open")
		require.False(t, s.IsTerminal(), "Empty board should not be terminal")
		require.Equal(t, game.NoPlayer, s.Winner(), "Nobody should have won")
	})

	t.Run("rewards before the end", func(t *testing.T) {
		_, err := New().Rewards()

		require.True(t, errors.Is(err, game.ErrNotTerminal), "Rewards should fail with ErrNotTerminal")
	})
}

func TestPlay(t *testing.T) {
	t.Run("drops pieces to the lowest empty row", func(t *testing.T) {
		s := play(t, 3, 3)

		require.Equal(t, game.Player(0), s.At(0, 3), "First piece should land on the bottom row")
		require.Equal(t, game.Player(1), s.At(1, 3), "Second piece should stack on the first")
		require.Equal(t, game.NoPlayer, s.At(2, 3), "Cell above should be empty")
		require.Equal(t, game.Player(0), s.Player(), "Turn should alternate")
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		s := New()

		_, err := s.Play(2)

		require.NoError(t, err)
		require.Equal(t, game.NoPlayer, s.At(0, 2), "Original board should be untouched")
		require.Equal(t, game.Player(0), s.Player(), "Original turn should be untouched")
	})

	t.Run("full column is illegal", func(t *testing.T) {
		s := play(t, 0, 0, 0, 0, 0, 0)

		_, err := s.Play(0)

		require.True(t, errors.Is(err, game.ErrIllegalAction), "Full column should be illegal")
		require.NotContains(t, s.LegalActions(), 0, "Full column should not be legal")
	})

	t.Run("out of range column is illegal", func(t *testing.T) {
		_, err := New().Play(Columns)

		require.True(t, errors.Is(err, game.ErrIllegalAction), "Column out of range should be illegal")
	})
}

func TestWinner(t *testing.T) {
	cases := []struct {
		name    string
		columns []int
		winner  game.Player
	}{
		{"horizontal", []int{0, 0, 1, 1, 2, 2, 3}, 0},
		{"vertical", []int{0, 1, 0, 1, 0, 1, 0}, 0},
		{"diagonal", []int{0, 1, 1, 2, 2, 3, 2, 3, 3, 6, 3}, 0},
		{"anti diagonal", []int{6, 5, 5, 4, 4, 3, 4, 3, 3, 0, 3}, 0},
		{"second player", []int{6, 0, 1, 0, 1, 0, 1, 0}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := play(t, c.columns...)

			require.True(t, s.IsTerminal(), "Four in a row should end the game")
			require.Equal(t, c.winner, s.Winner())
			require.Equal(t, game.NoPlayer, s.Player(), "Nobody should move after the game ends")
			require.Empty(t, s.LegalActions(), "Finished game should have no legal actions")

			rewards, err := s.Rewards()
			require.NoError(t, err)
			require.Equal(t, 1.0, rewards[c.winner], "Winner should be rewarded +1")
			require.Equal(t, -1.0, rewards[1-c.winner], "Loser should be rewarded -1")

			_, err = s.Play(5)
			require.True(t, errors.Is(err, game.ErrIllegalAction), "Playing after the end should be illegal")
		})
	}
}

func TestDraw(t *testing.T) {
	t.Run("full board without a line", func(t *testing.T) {
		s := play(t, 4, 3, 6, 0, 1, 4, 5, 5, 1, 1, 5, 0, 1, 6, 0, 1, 5, 5, 1, 0, 4,
			6, 3, 2, 6, 6, 0, 4, 6, 5, 2, 0, 4, 2, 4, 2, 2, 2, 3, 3, 3, 3)

		require.True(t, s.IsTerminal(), "Full board should be terminal")
		require.Equal(t, game.NoPlayer, s.Winner(), "Nobody should have won")
		require.Empty(t, s.LegalActions(), "Full board should have no legal actions")

		rewards, err := s.Rewards()
		require.NoError(t, err)
		require.Equal(t, game.Rewards{0: 0, 1: 0}, rewards, "Draw should reward nobody")
	})
}
