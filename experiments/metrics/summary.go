package metrics

import (
	"montecarlo/game"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// AgentSummary aggregates the results of one agent over a run.
type AgentSummary struct {
	Agent         int
	Games         int
	Wins          int
	Abandoned     int
	MeanReward    float64
	StdReward     float64
	MeanEpisodes  float64
	MeanMoveTime  time.Duration
	MeanTreeSize  float64
	TreeReuseRate float64 // fraction of searches that kept a subtree
}

// Summarize groups game and move records by agent, ordered by agent ID.
func Summarize(games []GameRecord, moves []MoveRecord) []AgentSummary {
	rewards := map[int][]float64{}
	summaries := map[int]*AgentSummary{}
	get := func(agent int) *AgentSummary {
		s, ok := summaries[agent]
		if !ok {
			s = &AgentSummary{Agent: agent}
			summaries[agent] = s
		}
		return s
	}

	for _, record := range games {
		for seat, agent := range record.Agents {
			s := get(agent)
			s.Games++
			if record.Rewards == nil {
				s.Abandoned++
				continue
			}
			if record.Winner == game.Player(seat) {
				s.Wins++
			}
			rewards[agent] = append(rewards[agent], record.Rewards[game.Player(seat)])
		}
	}

	episodes := map[int][]float64{}
	durations := map[int][]float64{}
	treeSizes := map[int][]float64{}
	reused := map[int]int{}
	for _, record := range moves {
		get(record.Agent)
		episodes[record.Agent] = append(episodes[record.Agent], float64(record.Episodes))
		durations[record.Agent] = append(durations[record.Agent], float64(record.Duration))
		treeSizes[record.Agent] = append(treeSizes[record.Agent], float64(record.TreeSize))
		if !record.IsTreeReset {
			reused[record.Agent]++
		}
	}

	result := make([]AgentSummary, 0, len(summaries))
	for agent, s := range summaries {
		s.MeanReward, s.StdReward = MeanStdDev(rewards[agent])
		s.MeanEpisodes = mean(episodes[agent])
		s.MeanMoveTime = time.Duration(mean(durations[agent]))
		s.MeanTreeSize = mean(treeSizes[agent])
		if n := len(episodes[agent]); n > 0 {
			s.TreeReuseRate = float64(reused[agent]) / float64(n)
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Agent < result[j].Agent
	})
	return result
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// MeanStdDev is zero-safe: no samples give 0, 0 and one sample has no spread.
func MeanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
