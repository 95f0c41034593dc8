package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/stockdesk/krfeed/mst"
	"github.com/stockdesk/krfeed/rss"
)

// Config holds every tunable of krfeed. The zero-flag defaults reproduce
// the hardcoded URLs and paths of the original scripts.
type Config struct {
	FeedURL   string `mapstructure:"feed_url"`
	KospiURL  string `mapstructure:"kospi_url"`
	KosdaqURL string `mapstructure:"kosdaq_url"`

	// WorkDir receives the downloaded archives and extracted .mst files.
	WorkDir     string `mapstructure:"work_dir"`
	StocksCSV   string `mapstructure:"stocks_csv"`
	NewsCSV     string `mapstructure:"news_csv"`
	ParquetPath string `mapstructure:"parquet_path"`
	DBPath      string `mapstructure:"db_path"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// InsecureTLS skips certificate checks for the master-file downloads only.
	InsecureTLS bool          `mapstructure:"insecure_tls"`
	LogLevel    string        `mapstructure:"log_level"`
}

const EnvPrefix = "KRFEED"

// New returns a viper instance with defaults, KRFEED_* environment
// variables and an optional krfeed.yaml wired in. Callers may bind flags
// on it before calling Load.
func New() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("feed_url", rss.DefaultFeedURL)
	v.SetDefault("kospi_url", mst.KospiURL)
	v.SetDefault("kosdaq_url", mst.KosdaqURL)
	v.SetDefault("work_dir", ".")
	v.SetDefault("stocks_csv", "public/data/kr_stocks.csv")
	v.SetDefault("news_csv", "public/data/ai_news.csv")
	v.SetDefault("parquet_path", "")
	v.SetDefault("db_path", "")
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("insecure_tls", false)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("krfeed")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.krfeed")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var missing []string
	for name, val := range map[string]string{
		"feed_url":   cfg.FeedURL,
		"kospi_url":  cfg.KospiURL,
		"kosdaq_url": cfg.KosdaqURL,
		"work_dir":   cfg.WorkDir,
		"stocks_csv": cfg.StocksCSV,
		"news_csv":   cfg.NewsCSV,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("http_timeout must not be negative: %s", cfg.HTTPTimeout)
	}

	return cfg, nil
}
