// Package config loads the immutable process configuration from an
// optional YAML file with environment variable overrides. Business code
// never reads the environment directly; everything flows through the
// Config value built once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"gopkg.in/yaml.v3"
)

// Defaults mirror the documented fallback behavior: tier amounts in base
// asset units, thresholds, and the two-year moving average window.
var (
	DefaultBuyOverlapAmount = decimal.RequireFromString("0.0002")
	DefaultBuyFNGAmount     = decimal.RequireFromString("0.0001")
	DefaultBuyMAAmount      = decimal.RequireFromString("0.0005")
	DefaultFNGThreshold     = decimal.NewFromInt(25)
	DefaultMAThreshold      = decimal.RequireFromString("0.1")
)

const (
	DefaultMAPeriodDays   = 730
	DefaultRetryAttempts  = 3
	DefaultRetryDelay     = 5 * time.Second
	DefaultRequestTimeout = 20 * time.Second
)

// Config is the process-wide configuration, read once and immutable.
type Config struct {
	Platform  string
	Pair      entity.Pair
	APIKey    string
	APISecret string

	// TriggerTime is the daily evaluation time, "HH:MM" UTC.
	TriggerTime string

	// FNGThresholdPercent: buy signal when FNG <= this value (0..100).
	FNGThresholdPercent decimal.Decimal
	// MAThresholdPercent is a fraction: 0.1 means the price must be at
	// least 10% below the moving average.
	MAThresholdPercent decimal.Decimal

	BuyOverlapAmount decimal.Decimal
	BuyFNGAmount     decimal.Decimal
	BuyMAAmount      decimal.Decimal
	// BuyDailyAmount is the optional unconditional daily purchase,
	// independent of the signal tiers. Zero disables it.
	BuyDailyAmount decimal.Decimal

	MAPeriodDays int
	CacheFile    string
	WALDir       string
	SQLitePath   string
	SentryDSN    string
	RunOnStart   bool

	RetryAttempts  int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

type configYaml struct {
	Platform            string `yaml:"platform"`
	Pair                string `yaml:"pair"`
	TriggerTime         string `yaml:"trigger_time"`
	FNGThresholdPercent string `yaml:"fng_threshold_percent"`
	MAThresholdPercent  string `yaml:"ma_threshold_percent"`
	BuyOverlapAmount    string `yaml:"buy_overlap_amount,omitempty"`
	BuyFNGAmount        string `yaml:"buy_fng_amount,omitempty"`
	BuyMAAmount         string `yaml:"buy_ma_amount,omitempty"`
	BuyDailyAmount      string `yaml:"buy_daily_amount,omitempty"`
	MAPeriodDays        int    `yaml:"ma_period_days,omitempty"`
	CacheFile           string `yaml:"cache_file,omitempty"`
	WALDir              string `yaml:"wal_dir,omitempty"`
	SQLitePath          string `yaml:"sqlite_path,omitempty"`
	RunOnStart          bool   `yaml:"run_on_start,omitempty"`
}

// Load builds the configuration from the YAML file at path (may be
// empty) and environment variables, env winning. It fails with the full
// list of missing required values, not just the first one.
func Load(path string) (Config, error) {
	var y configYaml
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &y); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := Config{
		Platform:       firstNonEmpty(os.Getenv("PLATFORM"), y.Platform, "coinex"),
		TriggerTime:    firstNonEmpty(os.Getenv("TRIGGER_TIME"), y.TriggerTime),
		CacheFile:      firstNonEmpty(os.Getenv("CACHE_FILE"), y.CacheFile),
		WALDir:         firstNonEmpty(os.Getenv("WAL_DIR"), y.WALDir, "./wal"),
		SQLitePath:     firstNonEmpty(os.Getenv("SQLITE_PATH"), y.SQLitePath),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		MAPeriodDays:   DefaultMAPeriodDays,
		RetryAttempts:  DefaultRetryAttempts,
		RetryDelay:     DefaultRetryDelay,
		RequestTimeout: DefaultRequestTimeout,
	}

	pairStr := firstNonEmpty(os.Getenv("PAIR"), y.Pair, "BTC_USDT")
	pair, err := pairFromString(pairStr)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid pair %q", entity.ErrInvalidConfiguration, pairStr)
	}
	cfg.Pair = pair

	if cfg.CacheFile == "" {
		cfg.CacheFile = fmt.Sprintf("./%s_historical.csv", strings.ToLower(pair.String()))
	}

	keyEnv, secretEnv := credentialEnvNames(cfg.Platform)
	cfg.APIKey = os.Getenv(keyEnv)
	cfg.APISecret = os.Getenv(secretEnv)

	if v := firstNonEmpty(os.Getenv("MA_PERIOD_DAYS"), ""); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return Config{}, fmt.Errorf("%w: MA_PERIOD_DAYS must be a positive integer, got %q", entity.ErrInvalidConfiguration, v)
		}
		cfg.MAPeriodDays = days
	} else if y.MAPeriodDays > 0 {
		cfg.MAPeriodDays = y.MAPeriodDays
	}

	cfg.FNGThresholdPercent, err = decimalValue("FNG_THRESHOLD_PERCENT", y.FNGThresholdPercent, DefaultFNGThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.MAThresholdPercent, err = decimalValue("MA_THRESHOLD_PERCENT", y.MAThresholdPercent, DefaultMAThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.BuyOverlapAmount, err = decimalValue("BUY_OVERLAP_AMOUNT", y.BuyOverlapAmount, DefaultBuyOverlapAmount)
	if err != nil {
		return Config{}, err
	}
	cfg.BuyFNGAmount, err = decimalValue("BUY_FNG_AMOUNT", y.BuyFNGAmount, DefaultBuyFNGAmount)
	if err != nil {
		return Config{}, err
	}
	cfg.BuyMAAmount, err = decimalValue("BUY_MA_AMOUNT", y.BuyMAAmount, DefaultBuyMAAmount)
	if err != nil {
		return Config{}, err
	}
	cfg.BuyDailyAmount, err = decimalValue("BUY_DAILY_AMOUNT", y.BuyDailyAmount, decimal.Zero)
	if err != nil {
		return Config{}, err
	}

	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.RunOnStart = v == "true" || v == "1"
	} else {
		cfg.RunOnStart = y.RunOnStart
	}

	if err := cfg.validate(keyEnv, secretEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate collects every missing required value so the operator sees
// the whole list at once.
func (c Config) validate(keyEnv, secretEnv string) error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, keyEnv)
	}
	if c.APISecret == "" {
		missing = append(missing, secretEnv)
	}
	if c.TriggerTime == "" {
		missing = append(missing, "TRIGGER_TIME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required values: %s",
			entity.ErrInvalidConfiguration, strings.Join(missing, ", "))
	}

	if _, _, err := ParseTriggerTime(c.TriggerTime); err != nil {
		return err
	}

	switch c.Platform {
	case "coinex", "binance", "bybit":
	default:
		return fmt.Errorf("%w: unsupported platform %q", entity.ErrInvalidConfiguration, c.Platform)
	}

	if c.FNGThresholdPercent.IsNegative() || c.FNGThresholdPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: FNG_THRESHOLD_PERCENT must be within 0..100, got %s",
			entity.ErrInvalidConfiguration, c.FNGThresholdPercent.String())
	}
	if c.MAThresholdPercent.IsNegative() || c.MAThresholdPercent.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: MA_THRESHOLD_PERCENT is a fraction and must be within [0, 1), got %s",
			entity.ErrInvalidConfiguration, c.MAThresholdPercent.String())
	}
	if c.BuyDailyAmount.IsNegative() {
		return fmt.Errorf("%w: BUY_DAILY_AMOUNT must not be negative", entity.ErrInvalidConfiguration)
	}

	return nil
}

// ParseTriggerTime validates and splits an "HH:MM" trigger time.
func ParseTriggerTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: TRIGGER_TIME must be HH:MM, got %q", entity.ErrInvalidConfiguration, s)
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: TRIGGER_TIME must be HH:MM, got %q", entity.ErrInvalidConfiguration, s)
	}
	return hour, minute, nil
}

func credentialEnvNames(platform string) (key, secret string) {
	prefix := strings.ToUpper(platform)
	return prefix + "_API_KEY", prefix + "_API_SECRET"
}

func decimalValue(envName, yamlValue string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := firstNonEmpty(os.Getenv(envName), yamlValue)
	if raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must be a decimal, got %q",
			entity.ErrInvalidConfiguration, envName, raw)
	}
	return d, nil
}

func pairFromString(s string) (entity.Pair, error) {
	elems := strings.Split(s, "_")
	if len(elems) != 2 || elems[0] == "" || elems[1] == "" {
		return entity.Pair{}, fmt.Errorf("invalid pair param")
	}
	return entity.Pair{From: elems[0], To: elems[1]}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
