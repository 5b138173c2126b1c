package searcher

import (
	"math"

	"golang.org/x/exp/rand"
)

// DefaultExplore is the usual UCB1 exploration constant, sqrt(2).
var DefaultExplore = math.Sqrt2

type uct struct {
	explore   float64
	numerator float64
}

func newUCT(explore float64, N int) *uct {
	if N <= 0 {
		panic("N must be positive")
	}
	return &uct{explore: explore, numerator: explore * explore * math.Log(float64(N))}
}

func (u uct) evaluate(q float64, n int) float64 {
	// Unvisited children come first unless exploration is off
	if n == 0 {
		if u.explore == 0 {
			return 0
		}
		return math.Inf(1)
	}
	if n < 0 {
		panic("n cannot be negative")
	}
	// UCT = q/n + c*sqrt(ln(N)/n)
	return q/float64(n) + math.Sqrt(u.numerator/float64(n))
}

// argmax returns the index of a maximal score. Ties are broken uniformly at
// random.
func argmax(scores []float64, r *rand.Rand) int {
	if len(scores) == 0 {
		panic("no scores to pick from")
	}

	best := math.Inf(-1)
	ties := make([]int, 0, len(scores))
	for i, score := range scores {
		switch {
		case score > best:
			best = score
			ties = append(ties[:0], i)
		case score == best:
			ties = append(ties, i)
		}
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[r.Intn(len(ties))]
}
