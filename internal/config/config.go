package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "config.toml"

const envPrefix = "TANAKA"

var (
	ErrMissingKey   = errors.New("missing_config_key")
	ErrInvalidValue = errors.New("invalid_config_value")
)

// Config is the immutable runtime snapshot built once at startup.
type Config struct {
	DiscordToken string `mapstructure:"discord_token"`
	Prefix       string `mapstructure:"prefix"`
	DBURL        string `mapstructure:"db_url"`
	RedisURL     string `mapstructure:"redis_url"`

	ReactionSuccess string `mapstructure:"reaction_success"`
	ReactionFailure string `mapstructure:"reaction_failure"`

	Messages MessagesConfig `mapstructure:"messages"`
	Log      LogConfig      `mapstructure:"log"`
	Bot      BotConfig      `mapstructure:"bot"`
	DB       DBConfig       `mapstructure:"db"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Otel     OtelConfig     `mapstructure:"otel"`
}

// MessagesConfig holds the user-facing strings.
type MessagesConfig struct {
	DMNotAllowed string `mapstructure:"dm_not_allowed"`
	RankEmpty    string `mapstructure:"rank_empty"`
	UsageAdd     string `mapstructure:"usage_add"`
	UsageRemove  string `mapstructure:"usage_remove"`
	UsageAlias   string `mapstructure:"usage_alias"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BotConfig struct {
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

type DBConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// HTTPConfig configures the operational HTTP surface. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type OtelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Endpoint      string  `mapstructure:"endpoint"`
	Protocol      string  `mapstructure:"protocol"`
	SamplingRatio float64 `mapstructure:"sampling_ratio"`
}

var requiredKeys = []string{"discord_token", "prefix", "db_url", "redis_url"}

// Load reads the TOML file at path, applies TANAKA_* environment overrides
// and validates the required keys.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for _, key := range requiredKeys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first required key that is empty or the first
// optional value that is out of range.
func Validate(cfg Config) error {
	required := map[string]string{
		"discord_token": cfg.DiscordToken,
		"prefix":        cfg.Prefix,
		"db_url":        cfg.DBURL,
		"redis_url":     cfg.RedisURL,
	}
	for _, key := range requiredKeys {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingKey, key)
		}
	}
	if cfg.Bot.HandlerTimeout <= 0 {
		return fmt.Errorf("%w: bot.handler_timeout must be positive", ErrInvalidValue)
	}
	if cfg.Otel.SamplingRatio < 0 || cfg.Otel.SamplingRatio > 1 {
		return fmt.Errorf("%w: otel.sampling_ratio must be within [0,1]", ErrInvalidValue)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reaction_success", "✅")
	v.SetDefault("reaction_failure", "❌")

	v.SetDefault("messages.dm_not_allowed", "このコマンドは DM で実行できません")
	v.SetDefault("messages.rank_empty", "まだランキングはありません")
	v.SetDefault("messages.usage_add", "使い方: add <name> <response>")
	v.SetDefault("messages.usage_remove", "使い方: remove <name>")
	v.SetDefault("messages.usage_alias", "使い方: alias add <src> <dst> / alias remove <src>")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("bot.handler_timeout", "10s")

	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.auto_migrate", false)

	v.SetDefault("http.addr", "")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.protocol", "grpc")
	v.SetDefault("otel.sampling_ratio", 0.1)
}
