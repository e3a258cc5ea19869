package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("SBFOOD_DB_DSN", dsn)
	t.Setenv("SBFOOD_LOG_LEVEL", "error")

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "create-admin", "--email", "root@sbfoods.test", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin root@sbfoods.test")

	_, err = run(t, "create-admin", "--email", "root@sbfoods.test", "--password", "secret123")
	assert.Error(t, err, "duplicate email")

	out, err = run(t, "seed", "--restaurants", "1", "--products", "2", "--customers", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "admin0@sbfoods.test")

	db, err := config.OpenDB(config.DBConfig{Driver: "sqlite", DSN: dsn}, zerolog.Nop())
	require.NoError(t, err)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()
	var admins, products int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Equal(t, int64(2), admins)
	assert.Equal(t, int64(2), products)
}
