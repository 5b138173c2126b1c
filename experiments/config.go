package experiments

import (
	"montecarlo/experiments/metrics"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNumGames    = 10
	DefaultParallelism = 4
	DefaultOutDir      = "results"
)

var ErrInvalidConfig = errors.New("invalid experiment config")

// Config describes one experiment: a set of agents and the matchups they
// play. Each matchup lists agent IDs by seat.
type Config struct {
	Name        string                `yaml:"name"`
	Game        string                `yaml:"game"`
	NumGames    int                   `yaml:"numGames"` // per matchup
	Parallelism int                   `yaml:"parallelism"`
	Seed        uint64                `yaml:"seed"`
	OutDir      string                `yaml:"outDir"`
	Agents      []metrics.AgentConfig `yaml:"agents"`
	MatchUps    [][]int               `yaml:"matchups"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = c.Game
	}
	if c.NumGames == 0 {
		c.NumGames = DefaultNumGames
	}
	if c.Parallelism == 0 {
		c.Parallelism = DefaultParallelism
	}
	if c.OutDir == "" {
		c.OutDir = DefaultOutDir
	}
	for i := range c.Agents {
		if c.Agents[i].Kind == "" {
			c.Agents[i].Kind = KindMCTS
		}
	}
}

func (c Config) Validate() error {
	seats, ok := games[c.Game]
	if !ok {
		return errors.WithMessagef(ErrInvalidConfig, "unknown game %q, expected one of %v", c.Game, Games())
	}
	if c.NumGames < 0 {
		return errors.WithMessagef(ErrInvalidConfig, "numGames must not be negative, got %d", c.NumGames)
	}
	if c.Parallelism < 0 {
		return errors.WithMessagef(ErrInvalidConfig, "parallelism must not be negative, got %d", c.Parallelism)
	}
	if len(c.MatchUps) == 0 {
		return errors.WithMessage(ErrInvalidConfig, "no matchups")
	}

	agents := map[int]bool{}
	for _, agent := range c.Agents {
		if agents[agent.ID] {
			return errors.WithMessagef(ErrInvalidConfig, "duplicate agent %d", agent.ID)
		}
		agents[agent.ID] = true
		if err := validateAgent(agent); err != nil {
			return err
		}
	}
	for i, matchup := range c.MatchUps {
		if len(matchup) != seats.players {
			return errors.WithMessagef(ErrInvalidConfig, "matchup %d has %d agents, %s needs %d", i, len(matchup), c.Game, seats.players)
		}
		for _, id := range matchup {
			if !agents[id] {
				return errors.WithMessagef(ErrInvalidConfig, "matchup %d uses unknown agent %d", i, id)
			}
		}
	}
	return nil
}

func validateAgent(agent metrics.AgentConfig) error {
	switch agent.Kind {
	case KindRandom:
		return nil
	case KindMCTS, KindTraining:
	default:
		return errors.WithMessagef(ErrInvalidConfig, "agent %d has unknown kind %q", agent.ID, agent.Kind)
	}
	if agent.Iterations <= 0 && agent.Duration <= 0 {
		return errors.WithMessagef(ErrInvalidConfig, "agent %d needs iterations or duration", agent.ID)
	}
	if agent.Explore < 0 {
		return errors.WithMessagef(ErrInvalidConfig, "agent %d has negative explore %v", agent.ID, agent.Explore)
	}
	if agent.Kind == KindTraining && agent.Temperature <= 0 {
		return errors.WithMessagef(ErrInvalidConfig, "agent %d needs a positive temperature", agent.ID)
	}
	return nil
}
