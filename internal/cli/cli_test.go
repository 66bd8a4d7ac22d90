package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/smartbookmark/internal/auth"
)

const testSecret = "cli-test-secret-0123456789"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range GetRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "token", "import"} {
		require.True(t, names[want], "missing command %s", want)
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("SB_JWT_SECRET", testSecret)
	t.Setenv("SB_LOG_LEVEL", "error")

	out, err := run(t, "token", "--user", "alice", "--ttl", "1h")
	require.NoError(t, err)

	a, err := auth.New(testSecret, "smartbookmark", time.Hour)
	require.NoError(t, err)
	user, err := a.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "alice", user)
}

func TestImportCommandMemoryBackend(t *testing.T) {
	t.Setenv("SB_JWT_SECRET", testSecret)
	t.Setenv("SB_BACKEND", "memory")
	t.Setenv("SB_LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- Developer:
    - Go:
        - abbr: GO
          href: https://go.dev
    - Broken:
        - abbr: BR
          href: not a url
`), 0o600))

	out, err := run(t, "import", "--user", "alice", "--file", path)
	require.NoError(t, err)
	require.Equal(t, "imported 1, skipped 1\n", out)
}
