package ninetynine

import (
	"montecarlo/game"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const (
	Players    = 3
	BidCards   = 3
	Tricks     = 9
	HandSize   = BidCards + Tricks
	trickEmpty = 0
)

// Bonus points for making the bid, indexed by the number of players who made theirs
var bidBonus = [Players + 1]int{0, 30, 20, 10}

var ErrInvalidDeal = errors.New("invalid deal")

// State is the card-play phase of a hand of Ninety-Nine. Bids are fixed when
// the hand is dealt. Hand slices are never modified in place, so states share
// them freely.
type State struct {
	trump  Suit
	hands  [Players][]Card
	bids   [Players][]Card
	tricks [Players]int
	trick  [Players]Card
	played int // Cards in the current trick
	leader game.Player
	next   game.Player
}

var _ game.State[Card] = (*State)(nil)

// New shuffles and deals a hand, picks a trump suit and sets aside three
// random bid cards from every player's hand.
func New(r *rand.Rand) *State {
	deck := Deck()
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	var hands, bids [Players][]Card
	for p := 0; p < Players; p++ {
		hand := deck[p*HandSize : (p+1)*HandSize]
		bids[p] = slices.Clone(hand[:BidCards])
		hands[p] = slices.Clone(hand[BidCards:])
	}

	s, err := Deal(hands, bids, Suit(r.Intn(len(Suits))))
	if err != nil {
		panic(err) // A shuffled deck always deals
	}
	return s
}

// Deal builds the position after bidding: every player holds nine cards to
// play and three bid cards. Player 0 leads the first trick.
func Deal(hands, bids [Players][]Card, trump Suit) (*State, error) {
	if trump < Diamonds || trump > Clubs {
		return nil, errors.Wrapf(ErrInvalidDeal, "unknown trump %d", trump)
	}

	seen := make(map[Card]bool, Players*HandSize)
	s := &State{trump: trump, leader: 0, next: 0}
	for p := 0; p < Players; p++ {
		if len(hands[p]) != Tricks {
			return nil, errors.Wrapf(ErrInvalidDeal, "player %d holds %d cards", p, len(hands[p]))
		}
		if len(bids[p]) != BidCards {
			return nil, errors.Wrapf(ErrInvalidDeal, "player %d bids %d cards", p, len(bids[p]))
		}
		for _, card := range append(slices.Clone(hands[p]), bids[p]...) {
			if card.Rank < Six || card.Rank > Ace || card.Suit < Diamonds || card.Suit > Clubs {
				return nil, errors.Wrapf(ErrInvalidDeal, "unknown card %v", card)
			}
			if seen[card] {
				return nil, errors.Wrapf(ErrInvalidDeal, "card %v dealt twice", card)
			}
			seen[card] = true
		}
		s.hands[p] = slices.Clone(hands[p])
		slices.SortFunc(s.hands[p], compare)
		s.bids[p] = slices.Clone(bids[p])
	}
	return s, nil
}

func (s *State) Player() game.Player {
	if s.IsTerminal() {
		return game.NoPlayer
	}
	return s.next
}

func (s *State) LegalActions() []Card {
	if s.IsTerminal() {
		return []Card{}
	}
	hand := s.hands[s.next]
	if s.played == trickEmpty {
		return slices.Clone(hand)
	}

	// Must follow suit if able
	led := s.trick[s.leader].Suit
	following := make([]Card, 0, len(hand))
	for _, card := range hand {
		if card.Suit == led {
			following = append(following, card)
		}
	}
	if len(following) > 0 {
		return following
	}
	return slices.Clone(hand)
}

// Play plays card for the player to move. The trick is resolved as soon as
// every player has played to it.
func (s *State) Play(card Card) (game.State[Card], error) {
	if s.IsTerminal() {
		return nil, errors.Wrapf(game.ErrIllegalAction, "card %v: hand is over", card)
	}
	if !game.IsLegal[Card](s, card) {
		return nil, errors.Wrapf(game.ErrIllegalAction, "player %d cannot play %v", s.next, card)
	}

	next := *s
	i := slices.Index(s.hands[s.next], card)
	next.hands[s.next] = slices.Delete(slices.Clone(s.hands[s.next]), i, i+1)
	next.trick[s.next] = card
	next.played++

	if next.played < Players {
		next.next = (s.next + 1) % Players
		return &next, nil
	}

	winner := next.trickWinner()
	next.tricks[winner]++
	next.trick = [Players]Card{}
	next.played = trickEmpty
	next.leader = winner
	next.next = winner
	return &next, nil
}

// trickWinner returns the player of the highest trump, or of the highest card
// in the led suit if nobody trumped.
func (s *State) trickWinner() game.Player {
	winner := s.leader
	best := s.trick[s.leader]
	for p := game.Player(0); p < Players; p++ {
		card := s.trick[p]
		switch {
		case card.Suit == s.trump && best.Suit != s.trump:
			winner, best = p, card
		case card.Suit == best.Suit && card.Rank > best.Rank:
			winner, best = p, card
		}
	}
	return winner
}

func (s *State) IsTerminal() bool {
	for _, hand := range s.hands {
		if len(hand) > 0 {
			return false
		}
	}
	return s.played == trickEmpty
}

// Rewards credits 1 to every player who took exactly as many tricks as they
// bid, 0 otherwise.
func (s *State) Rewards() (game.Rewards, error) {
	if !s.IsTerminal() {
		return nil, errors.Wrapf(game.ErrNotTerminal, "%d tricks left", s.TricksLeft())
	}
	rewards := make(game.Rewards, Players)
	for p := 0; p < Players; p++ {
		rewards[game.Player(p)] = 0
		if s.MadeBid(game.Player(p)) {
			rewards[game.Player(p)] = 1
		}
	}
	return rewards, nil
}

// Scores returns tricks won plus the bonus for players who made their bid.
func (s *State) Scores() (map[game.Player]int, error) {
	if !s.IsTerminal() {
		return nil, errors.Wrapf(game.ErrNotTerminal, "%d tricks left", s.TricksLeft())
	}
	made := 0
	for p := 0; p < Players; p++ {
		if s.MadeBid(game.Player(p)) {
			made++
		}
	}
	scores := make(map[game.Player]int, Players)
	for p := 0; p < Players; p++ {
		scores[game.Player(p)] = s.tricks[p]
		if s.MadeBid(game.Player(p)) {
			scores[game.Player(p)] += bidBonus[made]
		}
	}
	return scores, nil
}

func (s *State) MadeBid(player game.Player) bool {
	return s.tricks[player] == BidValue(s.bids[player])
}

func (s *State) Trump() Suit {
	return s.trump
}

func (s *State) Hand(player game.Player) []Card {
	return slices.Clone(s.hands[player])
}

func (s *State) Bid(player game.Player) int {
	return BidValue(s.bids[player])
}

func (s *State) TricksWon(player game.Player) int {
	return s.tricks[player]
}

func (s *State) TricksLeft() int {
	left := 0
	for _, hand := range s.hands {
		left = max(left, len(hand))
	}
	return left
}
