package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"montecarlo/game"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// AgentConfig describes one contestant of an experiment.
type AgentConfig struct {
	ID          int           `yaml:"id" json:"id"`
	Kind        string        `yaml:"kind" json:"kind"` // "mcts", "training" or "random"
	Duration    time.Duration `yaml:"duration" json:"duration"`
	Iterations  int           `yaml:"iterations" json:"iterations"`
	Explore     float64       `yaml:"explore" json:"explore"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
}

type GameRecord struct {
	ID     int
	Agents []int // AgentConfig.ID by seat
	GameMetric
}

type MoveRecord struct {
	Game  int // GameRecord.ID
	Agent int // AgentConfig.ID
	MoveMetric
}

type Setup struct {
	RunID     string        `json:"runId"`
	Name      string        `json:"name"`
	Game      string        `json:"game"`
	Seed      uint64        `json:"seed"`
	Agents    []AgentConfig `json:"agents"`
	MatchUps  [][]int       `json:"matchups"`
	NumGames  int           `json:"numGames"` // per matchup
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// WriteAll writes every record file, continuing past failures.
func (w *Writer) WriteAll(setup Setup, games []GameRecord, moves []MoveRecord) error {
	var errs error
	if err := w.WriteSetup(setup); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := w.WriteAgentConfigs(setup.Agents); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := w.WriteGameRecords(games); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := w.WriteMoveRecords(moves); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}

func (w *Writer) WriteSetup(setup Setup) error {
	path := filepath.Join(w.baseDir, "setup.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "kind", "duration", "iterations", "explore", "temperature"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Kind,
			config.Duration.String(),
			strconv.Itoa(config.Iterations),
			strconv.FormatFloat(config.Explore, 'f', -1, 64),
			strconv.FormatFloat(config.Temperature, 'f', -1, 64),
		})
	}
	return w.writeCSV("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agents", "starting_player", "winner", "rewards", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			joinInts(record.Agents),
			strconv.Itoa(int(record.StartingPlayer)),
			strconv.Itoa(int(record.Winner)),
			formatRewards(len(record.Agents), record.Rewards),
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.writeCSV("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "agent", "step", "player", "duration", "episodes", "rollouts", "tree_size", "root_visits", "is_tree_reset"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Step),
			strconv.Itoa(int(record.Player)),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Rollouts),
			strconv.Itoa(record.TreeSize),
			strconv.Itoa(record.RootVisits),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.writeCSV("move_records.csv", "move records", header, rows)
}

func (w *Writer) writeCSV(name, what string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", what, err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}

// formatRewards lists rewards in seat order, empty for an abandoned game.
func formatRewards(seats int, rewards game.Rewards) string {
	if rewards == nil {
		return ""
	}
	parts := make([]string, seats)
	for seat := range seats {
		parts[seat] = strconv.FormatFloat(rewards[game.Player(seat)], 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}
