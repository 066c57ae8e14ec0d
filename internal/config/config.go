package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"fuel-price-tracker/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// StorageConfig locates the JSON state files.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// PollerConfig governs the poll cycle cadence and fetching behaviour.
type PollerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timezone     string        `mapstructure:"timezone"`
	AlignToTick  bool          `mapstructure:"align_to_tick"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	RunAtStart   bool          `mapstructure:"run_at_start"`
}

// TelegramConfig covers the chat surface and alert delivery.
type TelegramConfig struct {
	BotToken    string        `mapstructure:"bot_token"`
	APIBase     string        `mapstructure:"api_base"`
	AdminChatID int64         `mapstructure:"admin_chat_id"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	SendRate    float64       `mapstructure:"send_rate"`
}

// ServerConfig covers the HTTP dashboard.
type ServerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// BackupConfig covers state file snapshots.
type BackupConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Dir          string `mapstructure:"dir"`
	MaxSnapshots int    `mapstructure:"max_snapshots"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TANKWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tankwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.data_dir", "data")

	v.SetDefault("poller.interval", "5m")
	v.SetDefault("poller.fetch_timeout", "15s")
	v.SetDefault("poller.timezone", "Europe/Berlin")
	v.SetDefault("poller.align_to_tick", true)
	v.SetDefault("poller.startup_delay", "0s")
	v.SetDefault("poller.run_at_start", true)

	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("telegram.poll_timeout", "30s")
	v.SetDefault("telegram.send_rate", 25.0)

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.listen_addr", ":3000")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.max_snapshots", 10)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values. Soft
// concerns (missing bot token, missing backup dir) degrade at wiring time
// instead of failing here.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must be set")
	}
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("poller.interval must be greater than zero")
	}
	if c.Poller.FetchTimeout <= 0 {
		return fmt.Errorf("poller.fetch_timeout must be greater than zero")
	}
	if c.Telegram.SendRate < 0 {
		return fmt.Errorf("telegram.send_rate cannot be negative")
	}
	if c.Backup.MaxSnapshots <= 0 {
		return fmt.Errorf("backup.max_snapshots must be greater than zero")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("poller.timezone: %w", err)
	}
	return nil
}

// Location resolves the configured station timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Poller.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Poller.Timezone)
}
