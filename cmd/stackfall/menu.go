package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/games/stackfall"
	"github.com/vovakirdan/stackfall/internal/platform/tui"
	"github.com/vovakirdan/stackfall/internal/registry"
	"github.com/vovakirdan/stackfall/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick modes interactively",
	Long: `Start with a mode picker. After a watch ends you return to the menu.

Controls:
  Up/Down/j/k     - Navigate menu
  Left/Right/h/l  - Choose the campaign start level
  Enter/Space     - Watch the selected mode
  Tab             - Show recorded runs
  Q               - Quit

Examples:
  stackfall menu
  stackfall menu --fps 30
  stackfall menu --db ./runs.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	store := openStore()
	if store != nil {
		defer store.Close()
	}

	cfg := terminalConfig()
	names := stackfall.LevelNames()

	for {
		res, err := tui.RunMenu(cfg, names)
		if err != nil {
			return err
		}
		cfg = res.Config

		switch {
		case res.Quit:
			return nil

		case res.WantsRuns:
			back, err := tui.RunRunsBoard(store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !back {
				return nil
			}

		default:
			game, err := registry.Create(res.GameID)
			if err != nil {
				return fmt.Errorf("creating %s: %w", res.GameID, err)
			}
			if sel, ok := game.(tui.LevelSelector); ok {
				sel.SelectLevel(res.StartLevel)
			}
			if err := tui.Run(game, saver(store), cfg, logger); err != nil {
				return err
			}
		}
	}
}

// saver keeps a nil store from becoming a non-nil interface.
func saver(store *storage.Store) tui.RunSaver {
	if store == nil {
		return nil
	}
	return store
}
