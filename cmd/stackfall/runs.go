package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/platform/tui"
	"github.com/vovakirdan/stackfall/internal/registry"
	"github.com/vovakirdan/stackfall/internal/storage"
)

var (
	flagRunsBest  bool
	flagRunsLimit int
	flagRunsClear bool
	flagRunsTUI   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [mode]",
	Short: "Show recorded runs",
	Long: `Display recorded runs, newest first, with per-mode statistics.
Without a mode every mode is listed.

Examples:
  stackfall runs
  stackfall runs campaign --best
  stackfall runs endless --clear
  stackfall runs --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().BoolVar(&flagRunsBest, "best", false, "Order by score instead of date (requires a mode)")
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRunsClear, "clear", false, "Delete all runs of the mode")
	runsCmd.Flags().BoolVar(&flagRunsTUI, "tui", false, "Browse runs in the terminal UI")
}

func runRuns(_ *cobra.Command, args []string) error {
	mode := ""
	if len(args) == 1 {
		mode = args[0]
		if !registry.Exists(mode) {
			return fmt.Errorf("unknown mode %q, run 'stackfall list' to see available modes", mode)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run database: %w", err)
	}
	defer store.Close()

	switch {
	case flagRunsTUI:
		cfg := terminalConfig()
		_, err := tui.RunRunsBoard(store, cfg.ScreenW, cfg.ScreenH)
		return err

	case flagRunsClear:
		if mode == "" {
			return fmt.Errorf("--clear needs a mode")
		}
		if err := store.ClearRuns(mode); err != nil {
			return err
		}
		fmt.Printf("Cleared all %s runs.\n", mode)
		return nil
	}

	var runs []storage.Run
	if flagRunsBest {
		if mode == "" {
			return fmt.Errorf("--best needs a mode")
		}
		runs, err = store.BestRuns(mode, flagRunsLimit)
	} else {
		runs, err = store.RecentRuns(mode, flagRunsLimit)
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'stackfall run campaign' to record the first one!")
		return nil
	}

	fmt.Printf("  %-5s  %-9s  %-8s  %8s  %6s  %6s  %5s  %7s  %s\n",
		"ID", "Mode", "Result", "Score", "Levels", "Kills", "Acc", "Time", "Date")
	fmt.Printf("  %-5s  %-9s  %-8s  %8s  %6s  %6s  %5s  %7s  %s\n",
		"--", "----", "------", "-----", "------", "-----", "---", "----", "----")
	for _, r := range runs {
		fmt.Printf("  %-5d  %-9s  %-8s  %8d  %6d  %6d  %4.0f%%  %6.0fs  %s\n",
			r.ID, r.Mode, r.Outcome, r.Score, r.LevelsCleared, r.StacksKilled,
			r.Accuracy*100, r.Seconds, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	return printStats(store, mode)
}

func printStats(store *storage.Store, mode string) error {
	stats, err := store.GetAllModeStats()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, info := range registry.List() {
		s, ok := stats[info.ID]
		if !ok || (mode != "" && info.ID != mode) {
			continue
		}
		fmt.Printf("%s: %d runs, %.0f%% won, best %d, avg %.0f\n",
			info.Title, s.Runs, s.WinRate()*100, s.HighScore, s.AvgScore)
	}
	return nil
}
