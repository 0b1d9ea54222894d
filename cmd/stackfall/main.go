// stackfall runs the stacked-enemy shooter simulation, headless or in the
// terminal.
//
// Usage:
//
//	stackfall list              - List available modes
//	stackfall levels            - List campaign levels
//	stackfall run <mode>        - Run a simulation headless and print a summary
//	stackfall watch <mode>      - Watch a run in the terminal
//	stackfall menu              - Pick modes interactively
//	stackfall runs [mode]       - Show recorded runs
//	stackfall serve             - Start the SSH spectator server
//	stackfall config            - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--db <path>         - Set database path (default: ~/.stackfall/runs.db)
//	--config <path>     - Shooter config YAML
//	--levels <dir>      - Directory of level files
//	--log-level <lvl>   - debug, info, warn or error
//	--log-file <path>   - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/games/stackfall"
	"github.com/vovakirdan/stackfall/internal/storage"
)

var (
	// Global flags
	flagFPS       int
	flagSeed      int64
	flagDBPath    string
	flagConfig    string
	flagLevelsDir string
	flagLogLevel  string
	flagLogFile   string
)

// logger is set up before any command runs.
var logger = log.New(io.Discard)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stackfall",
	Short: "Stackfall - a stacked-enemy shooter simulation",
	Long: `Stackfall simulates waves of stacked enemies marching toward an
automatic gunner, with boss fights closing every campaign level.

Available commands:
  list     - Show all available modes
  levels   - Show campaign levels
  run      - Run headless and print a summary
  watch    - Watch a run in the terminal
  menu     - Interactive mode picker
  runs     - Show recorded runs
  serve    - Start SSH spectator server
  config   - Print the effective configuration

Examples:
  stackfall run campaign --seed 7
  stackfall watch endless
  stackfall menu
  stackfall serve --ssh :2222
  stackfall runs campaign --best`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (simulation steps per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.stackfall/runs.db", "Path to run database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to shooter config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "levels", "", "Directory of level YAML files (default: built-in levels)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// setup builds the logger and hands the shared settings to the game
// package. Full-screen commands only log when --log-file is given.
func setup(cmd *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}

	var out io.Writer = os.Stderr
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", flagLogFile, err)
		}
		out = f
	} else if fullScreen(cmd) {
		out = io.Discard
	}

	logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "stackfall",
	})

	stackfall.SetConfigPath(flagConfig)
	stackfall.SetLevelsDir(flagLevelsDir)
	stackfall.SetLogger(logger.WithPrefix("sim"))
	return nil
}

func fullScreen(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "watch", "menu":
		return true
	case "runs":
		tuiFlag, _ := cmd.Flags().GetBool("tui")
		return tuiFlag
	}
	return false
}

// openStore opens the run database. Failures are reported and yield nil;
// runs still work without storage.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run database: %v\n", err)
		logger.Warn("could not open run database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}
