package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookmarks-api/internal/bootstrap"
	"bookmarks-api/internal/core/config"
	"bookmarks-api/internal/service"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.ToSlash(filepath.Join(dir, "ctl.db")) + "?_pragma=foreign_keys(1)"
	yaml := fmt.Sprintf(`
app:
  env: test
log:
  level: error
apikey:
  secret: cli-secret
db:
  driver: sqlite
  dsn: %q
  maxOpenConns: 1
  logLevel: silent
`, dsn)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedUser(t *testing.T, path, name, email string) {
	t.Helper()
	cfg, err := config.Load(path)
	require.NoError(t, err)
	app, err := bootstrap.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()
	_, _, err = app.Auth.Register(context.Background(), service.RegisterInput{
		Name: name, Email: email, Password: "password123",
	})
	require.NoError(t, err)
}

func TestMigrateAndUsers(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	seedUser(t, path, "Control", "ctl@example.com")
	seedUser(t, path, "Someone Else", "other@example.com")

	out, err = run(t, "users", "promote", "ctl@example.com", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ctl@example.com (#1) is now admin")

	_, err = run(t, "users", "promote", "ctl@example.com", "-c", path)
	assert.ErrorContains(t, err, "already an admin")

	out, err = run(t, "users", "list", "-c", path, "--search", "ctl")
	require.NoError(t, err)
	assert.Contains(t, out, "ctl@example.com")
	assert.NotContains(t, out, "other@example.com")
	assert.Contains(t, out, "page 1/1, 1 users")
}

func TestUsersListRejectsBadOrder(t *testing.T) {
	_, err := run(t, "users", "list", "-c", writeConfig(t), "--order", "sideways")
	assert.ErrorContains(t, err, "invalid --order")
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "migrate", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
