package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartbookmark/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and live API",
	Long: `Start the server. It connects to the configured backend (SB_BACKEND=redis
by default, or memory), sweeps expired delete requests in the background and
stops gracefully on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadRuntime()
		defer func() { _ = log.Sync() }()

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Errorf("❌ %s failed to start: %v", cmd.Root().Name(), err)
			return err
		}
		return a.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
