package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/games/stackfall"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List campaign levels",
	Long: `Shows the campaign levels in play order with their quotas and bosses.
Levels come from --levels when given, otherwise the built-in set.

Examples:
  stackfall levels
  stackfall levels --levels ./my-levels`,
	RunE: runLevels,
}

func runLevels(_ *cobra.Command, _ []string) error {
	settings, err := stackfall.LoadSettings()
	if err != nil {
		return err
	}
	if len(settings.Levels) == 0 {
		fmt.Println("No levels found.")
		return nil
	}

	def := settings.BossSpec()
	fmt.Printf("  %-3s  %-14s  %-16s  %5s  %8s  %s\n", "#", "ID", "Name", "Quota", "Duration", "Boss")
	fmt.Printf("  %-3s  %-14s  %-16s  %5s  %8s  %s\n", "-", "--", "----", "-----", "--------", "----")

	for i, l := range settings.Levels {
		cfg := l.Config(i, def)
		boss := "-"
		if cfg.Boss != nil {
			boss = fmt.Sprintf("%s (%.0f hp)", cfg.Boss.Name, cfg.Boss.HP)
		}
		duration := "endless"
		if !math.IsInf(cfg.SpawnDuration, 1) {
			duration = fmt.Sprintf("%.0fs", cfg.SpawnDuration)
		}
		fmt.Printf("  %-3d  %-14s  %-16s  %5d  %8s  %s\n", i+1, l.ID, l.Name, cfg.EnemyQuota, duration, boss)
	}

	fmt.Println()
	fmt.Println("Run 'stackfall watch campaign --level N' to start at a level.")
	return nil
}
