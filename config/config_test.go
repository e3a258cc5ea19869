package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/Shashank-1177/SBFood/models"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.IsDevelopment(), "error details stay hidden unless asked for")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SBFOOD_SERVER_PORT", "8081")
	t.Setenv("SBFOOD_APP_ENV", "development")
	t.Setenv("SBFOOD_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SBFOOD_REDIS_TTL", "90s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
}

func TestOpenDBAndMigrate(t *testing.T) {
	db, err := OpenDB(DBConfig{Driver: "sqlite", DSN: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable("orders"))
	assert.True(t, db.Migrator().HasTable("carts"))

	_, err = OpenDB(DBConfig{Driver: "mongo"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpenDBLogsThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	db, err := OpenDB(DBConfig{Driver: "sqlite", DSN: ":memory:"}, zerolog.New(&buf))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var cart models.Cart
	assert.Error(t, db.Where("user_id = ?", 42).First(&cart).Error)
	assert.Zero(t, buf.Len(), "a missing row is not worth a log line")

	assert.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), "no_such_table")
}
