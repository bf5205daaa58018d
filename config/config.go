package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Binance BinanceConfig `mapstructure:"binance"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Log     LogConfig     `mapstructure:"log"`
}

type BinanceConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WSConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// FeedConfig tunes the streaming client and the demo collector.
type FeedConfig struct {
	QuoteAsset  string          `mapstructure:"quote_asset"`  // catalog filter, e.g. "USDT"
	CatalogTTL  time.Duration   `mapstructure:"catalog_ttl"`  // instrument-catalog freshness window
	Symbols     []string        `mapstructure:"symbols"`      // instruments the demo binary subscribes to
	Reconnect   ReconnectConfig `mapstructure:"reconnect"`
	MetricsBind string          `mapstructure:"metrics_bind"` // address for the /metrics endpoint
}

// ReconnectConfig bounds the backoff controller.
type ReconnectConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper. It reads from
// config.yaml in the working directory or ./config and overrides with
// environment variables (e.g., BINANCE_WS_BASE_URL).
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Support environment variables with dot notation (e.g., FEED_QUOTE_ASSET)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("failed to read config: %v", err)
		}
		// No config file: run on defaults and environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("binance.rest.base_url", "https://api.binance.com")
	v.SetDefault("binance.rest.timeout", 10*time.Second)
	v.SetDefault("binance.ws.base_url", "wss://stream.binance.com:9443")

	v.SetDefault("feed.quote_asset", "USDT")
	v.SetDefault("feed.catalog_ttl", 5*time.Minute)
	v.SetDefault("feed.symbols", []string{"BTCUSDT", "ETHUSDT"})
	v.SetDefault("feed.reconnect.max_attempts", 5)
	v.SetDefault("feed.reconnect.base_delay", 3*time.Second)
	v.SetDefault("feed.reconnect.max_delay", 30*time.Second)
	v.SetDefault("feed.reconnect.jitter", 0.1)
	v.SetDefault("feed.metrics_bind", ":9102")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")
}
