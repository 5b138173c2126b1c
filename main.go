package main

import (
	"context"
	"flag"
	"fmt"
	"montecarlo/experiments"
	"montecarlo/experiments/metrics"
	"montecarlo/game/connectfour"
	"montecarlo/searcher"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	configPath := flag.String("config", getEnv("MONTECARLO_CONFIG", "experiments.yaml"), "Experiment config file")
	level := flag.String("log-level", getEnv("MONTECARLO_LOG_LEVEL", "info"), "Log level")
	outDir := flag.String("out", os.Getenv("MONTECARLO_OUT"), "Results directory, overrides the config")
	throughput := flag.String("throughput", "", "Comma-separated search durations to measure on the experiment's game, e.g. 10ms,100ms")
	dot := flag.Int("dot", 0, "Print the search tree of a fresh connect-four game to this depth and exit")
	iterations := flag.Int("iterations", 1000, "Search episodes for -dot")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Search seed for -dot")
	flag.Parse()

	if err := setupLogging(*level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case *dot > 0:
		err = printTree(ctx, *dot, *iterations, *seed)
	case *throughput != "":
		err = runThroughput(ctx, *configPath, *throughput)
	default:
		err = runExperiment(ctx, *configPath, *outDir)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	return nil
}

func printTree(ctx context.Context, depth, iterations int, seed uint64) error {
	m, err := searcher.NewMCTS[int](connectfour.New(), searcher.WithIterations(iterations), searcher.WithSeed(seed))
	if err != nil {
		return err
	}
	if _, err := m.Search(ctx); err != nil {
		return err
	}
	move, err := m.BestMove()
	if err != nil {
		return err
	}
	log.Info().Msgf("best move %d, principal variation %v", move, m.PrincipalVariation())

	graph, err := m.Dot(depth)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func runExperiment(ctx context.Context, path, outDir string) error {
	cfg, err := experiments.LoadConfig(path)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.OutDir = outDir
	}

	summary, err := experiments.Run(ctx, cfg)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func runThroughput(ctx context.Context, path, durations string) error {
	cfg, err := experiments.LoadConfig(path)
	if err != nil {
		return err
	}

	budgets := []metrics.AgentConfig{}
	for i, field := range strings.Split(durations, ",") {
		duration, err := time.ParseDuration(strings.TrimSpace(field))
		if err != nil {
			return errors.Wrapf(err, "invalid throughput duration %q", field)
		}
		budgets = append(budgets, metrics.AgentConfig{ID: i + 1, Duration: duration})
	}

	results, err := experiments.Throughput(ctx, cfg.Game, budgets, 5, cfg.Seed)
	if err != nil {
		return err
	}

	out := termenv.NewOutput(os.Stdout)
	fmt.Println(out.String(fmt.Sprintf("%-10s %14s %10s %12s", "budget", "episodes/s", "stddev", "tree size")).Bold())
	for _, result := range results {
		sizes := 0
		for _, search := range result.Searches {
			sizes += search.TreeSize
		}
		fmt.Printf("%-10s %14.0f %10.0f %12d\n", result.Budget.Duration, result.EpisodesPerSecond, result.StdDev, sizes/len(result.Searches))
	}
	return nil
}

func printSummary(summary experiments.Summary) {
	out := termenv.NewOutput(os.Stdout)
	header := out.String(fmt.Sprintf("%-6s %6s %6s %9s %9s %10s %12s %8s", "agent", "games", "wins", "reward", "stddev", "episodes", "move time", "reuse")).Bold()
	fmt.Printf("%d games, results in %s\n", summary.Games, summary.Dir)
	fmt.Println(header)
	best := bestAgent(summary.Agents)
	for _, s := range summary.Agents {
		line := fmt.Sprintf("%-6d %6d %6d %9.3f %9.3f %10.1f %12s %7.0f%%",
			s.Agent, s.Games, s.Wins, s.MeanReward, s.StdReward, s.MeanEpisodes, s.MeanMoveTime.Round(time.Microsecond), 100*s.TreeReuseRate)
		styled := out.String(line)
		if s.Agent == best {
			styled = styled.Foreground(out.Color("2")).Bold()
		}
		fmt.Println(styled)
	}
}

// bestAgent returns the agent with the highest mean reward.
func bestAgent(summaries []metrics.AgentSummary) int {
	best := -1
	for i, s := range summaries {
		if i == 0 || s.MeanReward > summaries[best].MeanReward {
			best = i
		}
	}
	if best < 0 {
		return -1
	}
	return summaries[best].Agent
}
