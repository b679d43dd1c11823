package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-threes/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagMaxTimeout  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Threes SSH server",
	Long: `Start an SSH server that allows users to connect and play Threes.

Each SSH connection gets its own session with a menu, the game and the
scoreboard. Scores are stored in the server's database under the SSH
user name, and on the shared leaderboard when one is configured.

Host key handling:
  - --host-key, then serve.host_key_path from the config
  - Otherwise, auto-generates a key at ~/.threes/host_key

Examples:
  threes serve                           # Listen on the configured address
  threes serve --ssh :2222               # Listen on port 2222
  threes serve --idle-timeout 5m         # Drop idle sessions sooner
  threes serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 2222`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Disconnect idle sessions after this long (default from config)")
	serveCmd.Flags().DurationVar(&flagMaxTimeout, "max-timeout", 0, "Maximum session length, 0 for none (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	sc := appCfg.Serve
	flags := cmd.Flags()
	if flags.Changed("ssh") {
		sc.Address = flagSSHAddr
	}
	if flags.Changed("host-key") {
		sc.HostKeyPath = flagHostKey
	}
	if flags.Changed("idle-timeout") {
		sc.IdleTimeout = flagIdleTimeout
	}
	if flags.Changed("max-timeout") {
		sc.MaxTimeout = flagMaxTimeout
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	board, err := openLeaderboard()
	if err != nil {
		return err
	}
	if board != nil {
		defer board.Close()
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     sc.Address,
		HostKeyPath: sc.HostKeyPath,
		IdleTimeout: sc.IdleTimeout,
		MaxTimeout:  sc.MaxTimeout,
	}, store, board, logger.WithPrefix("ssh"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting Threes SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(cmd.Context())
}
