package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/games/stackfall"
	"github.com/vovakirdan/stackfall/internal/registry"
)

var (
	flagRunLevel   int
	flagMaxSeconds float64
	flagNoSave     bool
)

var runCmd = &cobra.Command{
	Use:   "run <mode>",
	Short: "Run a simulation headless",
	Long: `Run a mode without a terminal UI as fast as possible and print a
summary. The run stops when the mode ends, after --max-seconds of
simulated time, or on Ctrl+C. Finished runs are recorded unless --no-save.

Examples:
  stackfall run campaign
  stackfall run campaign --seed 42 --level 3
  stackfall run endless --max-seconds 300 --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagRunLevel, "level", 0, "Campaign level to start at (1-indexed, 0 = first)")
	runCmd.Flags().Float64Var(&flagMaxSeconds, "max-seconds", 900, "Stop after this much simulated time")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	game, err := newGame(args[0], flagRunLevel)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := core.RuntimeConfig{TickRate: flagFPS, Seed: seed}
	game.Reset(cfg)
	if game.Err() != nil {
		return fmt.Errorf("cannot start %s: %w", args[0], game.Err())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("run started", "mode", game.ID(), "seed", seed)
	simulate(ctx, game, cfg.Dt(), flagMaxSeconds)

	sum := game.Summary()
	printSummary(sum)

	if flagNoSave {
		return nil
	}
	store := openStore()
	if store == nil {
		return nil
	}
	defer store.Close()
	id, err := store.SaveRun(game.RunRecord())
	if err != nil {
		logger.Warn("could not save run", "error", err)
		return nil
	}
	fmt.Printf("\nSaved as run #%d.\n", id)
	return nil
}

// newGame creates a stackfall mode by registry ID.
func newGame(id string, level int) (*stackfall.Game, error) {
	if !registry.Exists(id) {
		return nil, fmt.Errorf("unknown mode %q, run 'stackfall list' to see available modes", id)
	}
	g, err := registry.Create(id)
	if err != nil {
		return nil, err
	}
	game, ok := g.(*stackfall.Game)
	if !ok {
		return nil, fmt.Errorf("mode %q cannot run headless", id)
	}
	if level > 0 {
		game.SelectLevel(level)
	}
	return game, nil
}

// simulate steps the game until it ends, maxSeconds of simulated time
// pass or ctx is cancelled.
func simulate(ctx context.Context, game *stackfall.Game, dt, maxSeconds float64) {
	maxTicks := math.MaxInt
	if maxSeconds > 0 {
		maxTicks = int(math.Ceil(maxSeconds / dt))
	}

	in := core.NewInputFrame()
	for tick := 0; tick < maxTicks && !game.State().GameOver; tick++ {
		if tick%1024 == 0 && ctx.Err() != nil {
			logger.Warn("interrupted", "tick", tick)
			return
		}
		res := game.Step(in)
		for _, ev := range res.Events {
			logger.Info(ev, "t", fmt.Sprintf("%.1fs", float64(tick+1)*dt))
		}
	}
}

func printSummary(s stackfall.Summary) {
	fmt.Printf("Run summary - %s (seed %d)\n", s.Mode, s.Seed)
	fmt.Println()
	fmt.Printf("  %-15s %s\n", "Outcome", s.Outcome)
	fmt.Printf("  %-15s %d\n", "Score", s.Score)
	fmt.Printf("  %-15s %d\n", "Levels cleared", s.LevelsCleared)
	fmt.Printf("  %-15s %d of %d spawned\n", "Stacks killed", s.StacksKilled, s.Spawned)
	fmt.Printf("  %-15s %d\n", "Blocks killed", s.BlocksKilled)
	fmt.Printf("  %-15s %d\n", "Bosses killed", s.BossesKilled)
	fmt.Printf("  %-15s %d\n", "Escapes", s.Escapes)
	fmt.Printf("  %-15s %.0f%%\n", "Accuracy", s.Accuracy*100)
	fmt.Printf("  %-15s %.1fs\n", "Simulated", s.Seconds)
}
