package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Public PublicConfig `mapstructure:"public"`
	Log    LogConfig    `mapstructure:"log"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	Origin string `mapstructure:"origin"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type PublicConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// IsDevelopment enables error details in responses.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Defaults registers every key so environment overrides are seen by Unmarshal.
func Defaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "sbfoods.db")
	v.SetDefault("jwt.secret", "sbfoods_dev_secret")
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("cors.origin", "http://localhost:3000")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "order_events")
	v.SetDefault("public.url", "http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads .env (if present), an optional config file and SBFOOD_* env vars.
func Load(v *viper.Viper, file string) (*Config, error) {
	_ = godotenv.Load()

	Defaults(v)
	v.SetEnvPrefix("sbfood")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = csv(cfg.Kafka.Brokers)
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret must not be empty")
	}
	return cfg, nil
}

// csv flattens "a,b" entries coming from a single env var.
func csv(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
