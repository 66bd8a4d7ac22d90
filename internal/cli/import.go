package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartbookmark/internal/app"
	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
	"github.com/MrSnakeDoc/smartbookmark/internal/sources/homepage"
	"github.com/MrSnakeDoc/smartbookmark/internal/utils"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a homepage bookmarks.yaml for a user",
	Long: `Read a homepage (gethomepage.dev) bookmarks.yaml and add every entry to the
collection of --user. Entries with an invalid URL, and URLs the user already
saved, are skipped. Open live views pick the new rows up immediately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		file, _ := cmd.Flags().GetString("file")
		if user == "" || file == "" {
			return errors.New("--user and --file are required")
		}

		cfg, log := loadRuntime()
		defer func() { _ = log.Sync() }()

		parsed, err := homepage.NewBookmarkLoader(file).Load()
		if err != nil {
			return err
		}
		entries, err := homepage.NewBookmarkMapper().MapBookmarks(parsed)
		if err != nil {
			return err
		}

		backend, closeBackend, err := app.NewBackend(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer utils.MustClose(closeBackend, log, backend.Kind()+" backend")

		pending := bookmarks.NewPendingDeletes(cfg.DeleteConfirmTTL)
		cmds := bookmarks.NewCommands(backend.Session(user), pending, log)
		result, err := cmds.Import(cmd.Context(), entries)
		if err != nil {
			log.Error("import failed", logger.Int("imported", result.Imported), logger.Error(err))
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", result.Imported, result.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("user", "u", "", "User ID that owns the imported bookmarks")
	importCmd.Flags().StringP("file", "f", "", "Path to bookmarks.yaml")
}
