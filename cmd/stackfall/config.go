package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/config"
	"github.com/vovakirdan/stackfall/internal/games/stackfall"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the shooter configuration that runs would use, as YAML, with
the file it was loaded from. The output is a valid config file.

Search order: --config, ~/.stackfall/configs/shooter.yaml,
./configs/shooter.yaml, then the built-in defaults.

Examples:
  stackfall config
  stackfall config > ~/.stackfall/configs/shooter.yaml`,
	RunE: runConfig,
}

func runConfig(_ *cobra.Command, _ []string) error {
	settings, err := stackfall.LoadSettings()
	if err != nil {
		return err
	}

	data, err := config.MarshalShooter(settings.Shooter)
	if err != nil {
		return err
	}

	fmt.Printf("# source: %s\n", settings.ConfigSource)
	fmt.Printf("# levels: %d\n", len(settings.Levels))
	fmt.Print(string(data))
	return nil
}
