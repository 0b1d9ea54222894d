package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stackfall/internal/games/stackfall"
	"github.com/vovakirdan/stackfall/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagShared      string
	flagRestartWait int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH spectator server",
	Long: `Start an SSH server where every connection gets its own menu and runs.

Runs finished over SSH are recorded in the server's database (--db), so all
spectators share one run history.

With --shared <mode> the server runs a single broadcast of that mode
instead. Every connection watches the same run and can pause, spawn or
change its speed; finished runs restart automatically with the next seed.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.stackfall/host_key

Examples:
  stackfall serve                           # Listen on :23234 with auto-generated key
  stackfall serve --ssh :2222               # Listen on port 2222
  stackfall serve --host-key ./my_host_key  # Use specific host key
  stackfall serve --shared campaign         # Everyone watches one campaign

Spectators connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagShared, "shared", "", "Broadcast one shared run of this mode to every connection")
	serveCmd.Flags().IntVar(&flagRestartWait, "restart-delay", 5, "Seconds a finished shared run stays on screen")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.TickRate = flagFPS
	cfg.LevelNames = stackfall.LevelNames()
	cfg.SharedMode = flagShared
	cfg.RestartDelay = time.Duration(flagRestartWait) * time.Second

	server, err := tui.NewSSHServer(cfg, logger.WithPrefix("ssh"))
	if err != nil {
		return err
	}

	logger.Info("connect with ssh", "address", cfg.Address)
	return server.ListenAndServe()
}
