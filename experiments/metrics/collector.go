package metrics

import (
	"math"
	"montecarlo/game"
	"time"
)

type SearchMetric struct {
	Duration    time.Duration
	Episodes    int
	Rollouts    int
	TreeSize    int
	RootVisits  int
	IsTreeReset bool
}

type MoveMetric struct {
	Step   int
	Player game.Player
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Player
	Winner         game.Player // game.NoPlayer on a draw or a shared top reward
	Rewards        game.Rewards
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers the statistics of one search. It is not safe for
// concurrent use; every engine owns its own.
type Collector interface {
	Start()
	SetTreeReset(value bool)
	AddRollout()
	AddEpisode()
	Complete(treeSize, rootVisits int) SearchMetric
}

type collector struct {
	startTime   time.Time
	episodes    int
	rollouts    int
	isTreeReset bool
}

func NewCollector() Collector {
	return &collector{isTreeReset: true}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset = value
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.episodes = 0
	m.rollouts = 0
}

func (m *collector) AddRollout() {
	m.rollouts++
}

func (m *collector) AddEpisode() {
	m.episodes++
}

func (m *collector) Complete(treeSize, rootVisits int) SearchMetric {
	return SearchMetric{
		Duration:    time.Since(m.startTime),
		Episodes:    m.episodes,
		Rollouts:    m.rollouts,
		TreeSize:    treeSize,
		RootVisits:  rootVisits,
		IsTreeReset: m.isTreeReset,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                                         {}
func (m *dummyCollector) SetTreeReset(value bool)                        {}
func (m *dummyCollector) AddRollout()                                    {}
func (m *dummyCollector) AddEpisode()                                    {}
func (m *dummyCollector) Complete(treeSize, rootVisits int) SearchMetric { return SearchMetric{} }

// Winner returns the player with the strictly highest reward, or
// game.NoPlayer when the top reward is shared.
func Winner(rewards game.Rewards) game.Player {
	winner := game.NoPlayer
	best := math.Inf(-1)
	for player, reward := range rewards {
		switch {
		case reward > best:
			winner, best = player, reward
		case reward == best:
			winner = game.NoPlayer
		}
	}
	return winner
}
