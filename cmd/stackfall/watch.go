package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/stackfall/internal/core"
	"github.com/vovakirdan/stackfall/internal/platform/tui"
)

var flagWatchLevel int

var watchCmd = &cobra.Command{
	Use:   "watch <mode>",
	Short: "Watch a run in the terminal",
	Long: `Watch a mode play out on a top-down radar of the battlefield.

Controls:
  P/Space    - Pause
  S          - Spawn a random wave now
  N          - Skip to the next campaign level
  F          - Fail the current level
  +/-        - Change simulation speed
  R          - Restart with the next seed
  Ctrl+S     - Save a text screenshot
  ?          - Show all keys
  Q/Ctrl+C   - Quit

Examples:
  stackfall watch campaign
  stackfall watch campaign --level 2 --seed 9
  stackfall watch endless --fps 30`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagWatchLevel, "level", 0, "Campaign level to start at (1-indexed, 0 = first)")
}

func runWatch(_ *cobra.Command, args []string) error {
	game, err := newGame(args[0], flagWatchLevel)
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(game, saver(store), terminalConfig(), logger); err != nil {
		return fmt.Errorf("running %s: %w", args[0], err)
	}
	return nil
}

// terminalConfig builds a runtime config sized to the current terminal.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
