package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartbookmark/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for a user",
	Long: `Issue a signed session token for --user. Pass it as "Authorization: Bearer <token>"
or as the access_token query parameter of /api/live.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if user == "" {
			return errors.New("--user is required")
		}

		cfg, _ := loadRuntime()
		if ttl <= 0 {
			ttl = cfg.TokenTTL
		}

		a, err := auth.New(cfg.JWTSecret, cfg.JWTIssuer, ttl)
		if err != nil {
			return err
		}
		token, expires, err := a.Issue(user)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("user", "u", "", "User ID to put in the token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default SB_TOKEN_TTL)")
}
