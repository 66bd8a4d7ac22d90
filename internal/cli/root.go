package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartbookmark/internal/config"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
	"github.com/MrSnakeDoc/smartbookmark/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   version.AppName,
	Short: "A personal bookmark manager with live views",
	Long: `smartbookmark stores per-user bookmarks and keeps every open view in sync
with the store through a change channel. Run 'serve' to start the HTTP and
websocket API; use 'token' to mint a session token and 'import' to load a
homepage bookmarks.yaml.

Configuration is read from SB_* environment variables.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.SetVersionTemplate(version.String() + "\n")
}

// loadRuntime reads the environment and builds the logger every command uses.
func loadRuntime() (*config.Config, logger.Logger) {
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}
