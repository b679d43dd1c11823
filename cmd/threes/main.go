// threes plays, simulates and trains agents for the sliding-tile puzzle
// Threes in the terminal.
//
// Usage:
//
//	threes list              - List available games
//	threes play              - Play Threes interactively
//	threes menu              - Start menu with games and scoreboards
//	threes random            - Play a batch of random games and report scores
//	threes train             - Train a Q-learning agent
//	threes replay            - Step through a stored game
//	threes scores            - Show high scores
//	threes serve             - Start SSH server for remote play
//
// Global flags:
//
//	--seed <value>      - Master RNG seed (0 = random)
//	--db <path>         - Database path (default: ~/.threes/scores.db)
//	--config <path>     - Config file (default: search ~/.threes/configs, ./configs)
//	--log-level <lvl>   - debug, info, warn or error
//	--cpuprofile <path> - Write a CPU profile
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-threes/internal/config"
	"github.com/vovakirdan/tui-threes/internal/storage"
	"github.com/vovakirdan/tui-threes/internal/storage/redis"

	// Import games to register them
	_ "github.com/vovakirdan/tui-threes/internal/games/threes"
)

var (
	// Global flags
	flagSeed       uint64
	flagDBPath     string
	flagConfig     string
	flagLogLevel   string
	flagCPUProfile string
)

// Set up by the root command before any subcommand runs.
var (
	logger  *log.Logger
	appCfg  config.Config
	profile *os.File
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	stopProfile()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "threes",
	Short: "Threes - slide, merge and train agents in your terminal",
	Long: `Threes is a terminal version of the sliding-tile puzzle, with a random
player, a Q-learning trainer and replays of every stored game.

Available commands:
  list     - Show all available games
  play     - Play Threes interactively
  menu     - Interactive menu with games and scoreboards
  random   - Simulate a batch of random games
  train    - Train a Q-learning agent
  replay   - Step through a stored game
  scores   - View high scores
  serve    - Start SSH server for remote play

Examples:
  threes play
  threes random --games 100000 --seed 42
  threes train --generations 50
  threes replay --gen_id 12
  threes serve --ssh :2222`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Master RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.threes/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagCPUProfile, "cpuprofile", "", "Write a CPU profile to this file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup builds the logger, loads the config and starts profiling.
func setup(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "threes",
		Level:           level,
	})

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	appCfg = cfg

	if flagCPUProfile != "" {
		f, err := os.Create(flagCPUProfile)
		if err != nil {
			return fmt.Errorf("cannot create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("cannot start cpu profile: %w", err)
		}
		profile = f
		logger.Debug("cpu profiling", "file", flagCPUProfile)
	}
	return nil
}

func stopProfile() {
	if profile == nil {
		return
	}
	pprof.StopCPUProfile()
	profile.Close()
	profile = nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}

// openStore opens the scores database named by --db.
func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening scores database: %w", err)
	}
	return store, nil
}

// openLeaderboard connects to the shared leaderboard, or returns nil when
// none is configured.
func openLeaderboard() (*redis.Leaderboard, error) {
	lc := appCfg.Leaderboard
	if !lc.Enabled() {
		return nil, nil
	}

	rc := redis.DefaultConfig()
	rc.Addr = lc.Addr
	rc.Password = lc.Password
	rc.DB = lc.DB
	if lc.Prefix != "" {
		rc.Prefix = lc.Prefix
	}

	board, err := redis.New(rc)
	if err != nil {
		return nil, fmt.Errorf("connecting to leaderboard: %w", err)
	}
	logger.Debug("leaderboard connected", "addr", rc.Addr, "prefix", rc.Prefix)
	return board, nil
}

// playerName is the name recorded with interactive scores.
func playerName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "player"
}
