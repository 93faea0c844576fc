package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/core/database"
	"library-api/internal/repo"
	"library-api/pkg/utils"
)

func writeConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "library.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`
log:
  level: error
db:
  driver: sqlite
  dsn: "file:%s?_foreign_keys=1"
  logLevel: silent
jwt:
  secret: test
auth:
  bcryptCost: 4
`, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))
	return cfgPath, dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_AdminCLI_MigrateCreateGrant(t *testing.T) {
	cfg, dbPath := writeConfig(t)

	out, err := run(t, "migrate", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	out, err = run(t, "create-user", "-c", cfg, "--username", "root", "--email", "root@example.org", "--password", "pw", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "created user 1 (root)")

	out, err = run(t, "create-user", "-c", cfg, "--username", "bob", "--email", "bob@example.org", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "created user 2 (bob)")

	out, err = run(t, "grant-admin", "-c", cfg, "2")
	require.NoError(t, err)
	assert.Contains(t, out, "user 2 is now an administrator")

	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: "file:" + dbPath, LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	u, err := repo.NewUserRepo(db).FindByID(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.ElementsMatch(t, []string{"USER", "ADMIN"}, u.RoleNames())
}

func Test_AdminCLI_Errors(t *testing.T) {
	cfg, _ := writeConfig(t)
	_, err := run(t, "migrate", "-c", cfg)
	require.NoError(t, err)

	_, err = run(t, "grant-admin", "-c", cfg, "abc")
	assert.Error(t, err)

	_, err = run(t, "grant-admin", "-c", cfg, "99")
	assert.Error(t, err)

	_, err = run(t, "create-user", "-c", cfg, "--password", "pw")
	assert.Error(t, err)
}

func Test_readLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "secret\n", "secret"},
		{"spaces_kept", "  two words  \n", "  two words  "},
		{"crlf", "secret\r\n", "secret"},
		{"no_newline", "secret", "secret"},
		{"first_line_only", "one\ntwo\n", "one"},
		{"empty_line", "\n", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := readLine(strings.NewReader(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := readLine(strings.NewReader(""))
	assert.Error(t, err)
}

func Test_AdminCLI_PipedPasswordKeptAsTyped(t *testing.T) {
	cfg, dbPath := writeConfig(t)
	_, err := run(t, "migrate", "-c", cfg)
	require.NoError(t, err)

	out, err := runWithInput(t, " correct horse \r\n", "create-user", "-c", cfg, "--username", "ann", "--email", "ann@example.org")
	require.NoError(t, err)
	assert.Contains(t, out, "created user 1 (ann)")

	_, err = runWithInput(t, "", "create-user", "-c", cfg, "--username", "bob", "--email", "bob@example.org")
	assert.Error(t, err)

	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: "file:" + dbPath, LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	u, err := repo.NewUserRepo(db).FindByUsername(context.Background(), "ann")
	require.NoError(t, err)
	require.NotNil(t, u)
	hasher := utils.NewBcryptHasher(4)
	assert.True(t, hasher.Verify(" correct horse ", u.PasswordHash))
	assert.False(t, hasher.Verify("correct horse", u.PasswordHash))
}
