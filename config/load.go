package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"etf-market-maker/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string         `yaml:"env"`
	Exchange    ExchangeConfig `yaml:"exchange"`
	Trader      TraderConfig   `yaml:"trader"`
	Logger      logger.Config  `yaml:"logger"`
	MetricsAddr string         `yaml:"metricsAddr"`
}

// ExchangeConfig 执行连接参数。
type ExchangeConfig struct {
	Endpoint string `yaml:"endpoint"` // ws(s)://host:port/exec
	TeamName string `yaml:"teamName"`
	Secret   string `yaml:"secret"`
}

// TraderConfig 交易核心参数。
type TraderConfig struct {
	NumClones int  `yaml:"numClones"` // 每侧报价档数，场所允许 3 或 5
	CrossArb  bool `yaml:"crossArb"`  // 启用交叉套利吃单，可热更
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("MM_EXCHANGE_TEAM"); v != "" {
		cfg.Exchange.TeamName = v
	}
	if v := os.Getenv("MM_EXCHANGE_SECRET"); v != "" {
		cfg.Exchange.Secret = v
	}
	return cfg, Validate(cfg)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Trader.NumClones == 0 {
		cfg.Trader.NumClones = 5
	}
	if cfg.Logger.Level == "" {
		cfg.Logger = logger.DefaultConfig()
	}
}

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Exchange.Endpoint == "" {
		return errors.New("exchange.endpoint is required")
	}
	if cfg.Exchange.TeamName == "" || cfg.Exchange.Secret == "" {
		return errors.New("exchange.teamName/secret is required (or env overrides)")
	}
	if cfg.Trader.NumClones != 3 && cfg.Trader.NumClones != 5 {
		return fmt.Errorf("trader.numClones must be 3 or 5, got %d", cfg.Trader.NumClones)
	}
	return nil
}
