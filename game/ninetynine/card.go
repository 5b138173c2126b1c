package ninetynine

import (
	"cmp"
	"fmt"
)

type Suit int

const (
	Diamonds Suit = iota
	Spades
	Hearts
	Clubs
)

var Suits = []Suit{Diamonds, Spades, Hearts, Clubs}

// Value is the number of tricks a suit contributes to a bid.
func (s Suit) Value() int {
	return int(s)
}

func (s Suit) String() string {
	switch s {
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Clubs:
		return "♣"
	}
	return fmt.Sprintf("Suit(%d)", int(s))
}

type Rank int

const (
	Six Rank = iota
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var Ranks = []Rank{Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

func (r Rank) String() string {
	names := []string{"6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	if r < Six || r > Ace {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return names[r]
}

// Card is the action type of the game.
type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// compare orders cards by suit, then rank
func compare(a, b Card) int {
	if a.Suit != b.Suit {
		return cmp.Compare(a.Suit, b.Suit)
	}
	return cmp.Compare(a.Rank, b.Rank)
}

// Deck returns the 36 cards in suit then rank order.
func Deck() []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// BidValue sums the suit values of the bid cards.
func BidValue(bid []Card) int {
	value := 0
	for _, card := range bid {
		value += card.Suit.Value()
	}
	return value
}
