// Package config defines all configuration for the market-making tactic.
// Config is loaded from a YAML file (default: configs/config.yaml); CLI
// flags (spec.md §6) and TACTIC_* environment variables both bind into the
// same viper instance, so a flag, an env var, and a YAML key all resolve
// to one field.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file
// structure, with CLI flags and env vars layered on top.
type Config struct {
	DryRun   bool           `mapstructure:"dry_run"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Home     HomeConfig     `mapstructure:"home"`
	Remotes  []RemoteConfig `mapstructure:"remotes"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Timers   TimerConfig    `mapstructure:"timers"`
	HTML     HTMLConfig     `mapstructure:"html"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AuthConfig holds the wallet and L2 credentials used to sign home-venue
// requests. Key signs L1 (EIP-712) auth and derives L2 API keys.
type AuthConfig struct {
	Key        string `mapstructure:"key"`
	Secret     string `mapstructure:"secret"`
	APIKey     string `mapstructure:"api_key"`
	Passphrase string `mapstructure:"passphrase"`
	ChainID    int    `mapstructure:"chain_id"`
}

// HomeConfig describes the single venue the tactic trades on.
type HomeConfig struct {
	RESTBaseURL  string  `mapstructure:"rest_base_url"`
	WSURL        string  `mapstructure:"ws_url"`
	AssetID      string  `mapstructure:"asset_id"`
	TicksPerUnit float64 `mapstructure:"ticks_per_unit"`
}

// RemoteConfig describes one remote venue feeding the fair-value aggregator.
// TrustFactor is the aggregator's per-venue weighting multiplier (default
// 1.0; spec.md §4.2 gives 0.7 for a slow feed, 2.5 for a high-volume one).
type RemoteConfig struct {
	WSURL        string  `mapstructure:"ws_url"`
	AssetID      string  `mapstructure:"asset_id"`
	TicksPerUnit float64 `mapstructure:"ticks_per_unit"`
	TrustFactor  float64 `mapstructure:"trust_factor"`
}

// StrategyConfig tunes the Avellaneda-Stoikov quoting model (internal/tactic).
type StrategyConfig struct {
	Gamma            float64 `mapstructure:"gamma"`
	Sigma            float64 `mapstructure:"sigma"`
	K                float64 `mapstructure:"k"`
	T                float64 `mapstructure:"t"`
	BaseSize         float64 `mapstructure:"base_size"`
	MinSize          float64 `mapstructure:"min_size"`
	MinSpreadTicks   float64 `mapstructure:"min_spread_ticks"`
	PriceToleranceTk float64 `mapstructure:"price_tolerance_ticks"`
	SizeTolerance    float64 `mapstructure:"size_tolerance"`
	FairValueDepth   int     `mapstructure:"fair_value_depth"`
	EMAAlpha         float64 `mapstructure:"ema_alpha"`
	InventoryCap     float64 `mapstructure:"inventory_capacity"`
}

// RiskConfig bounds the remaining order budget, the reset abort threshold,
// and the single-instrument exposure limits internal/risk monitors.
type RiskConfig struct {
	OrderBudget             float64 `mapstructure:"order_budget"`
	MaxConsecutiveBadResets int     `mapstructure:"max_consecutive_bad_resets"`
	MaxNetPosition          float64 `mapstructure:"max_net_position"`
	MaxDailyLoss            float64 `mapstructure:"max_daily_loss"`
}

// TimerConfig holds every cadence named in spec.md §6; defaults come from
// internal/reactor.DefaultConfig and are overridden by whatever this
// produces.
type TimerConfig struct {
	Ping           time.Duration `mapstructure:"ping"`
	HTMLSnapshot   time.Duration `mapstructure:"html_snapshot"`
	GracefulReset  time.Duration `mapstructure:"graceful_reset"`
	FillPoll       time.Duration `mapstructure:"fill_poll"`
	ResetSettle    time.Duration `mapstructure:"reset_settle"`
	OrderLate      time.Duration `mapstructure:"order_late"`
	OrderStale     time.Duration `mapstructure:"order_stale"`
	OrderCheckGone time.Duration `mapstructure:"order_check_gone"`
}

// HTMLConfig controls the snapshot file written atomically on every html tick.
type HTMLConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig controls the Prometheus exposition endpoint. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BindFlags declares the CLI flags named in spec.md §6 on fs and binds them
// into v so that flag > env > YAML precedence falls out of viper for free.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("auth-key", "", "wallet private key used to sign home-venue requests")
	fs.String("auth-secret", "", "L2 API secret for HMAC-signed trading requests")
	fs.String("html", "", "path to write the HTML status snapshot to")
	fs.Float64("base-size", 0, "base quote size before inventory skew adjustment")
	fs.Float64("gamma", 0, "Avellaneda-Stoikov risk aversion")
	fs.StringSlice("venue-weight", nil, "remote_index=trust_factor pairs, index 0-based into remotes, e.g. 1=0.7")

	bindings := map[string]string{
		"auth-key":    "auth.key",
		"auth-secret": "auth.secret",
		"html":        "html.path",
		"base-size":   "strategy.base_size",
		"gamma":       "strategy.gamma",
	}
	for flag, key := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	if err := v.BindPFlag("venue-weight", fs.Lookup("venue-weight")); err != nil {
		return fmt.Errorf("bind flag venue-weight: %w", err)
	}
	return nil
}

// Load reads config from a YAML file, layering in CLI flags and TACTIC_*
// environment variable overrides. fs must not have been parsed yet: Load
// registers the flags (via BindFlags) before parsing it, so flag
// registration and argv parsing never race.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TACTIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := BindFlags(fs, v); err != nil {
			return nil, err
		}
		if err := fs.Parse(os.Args[1:]); err != nil {
			return nil, fmt.Errorf("parse flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if venueWeights := v.GetStringSlice("venue-weight"); len(venueWeights) > 0 {
		applyVenueWeightOverrides(&cfg, venueWeights)
	}

	return &cfg, nil
}

// applyVenueWeightOverrides parses "index=trust_factor" CLI overrides
// (spec.md §6 "tuning parameters for ... venue weights") onto cfg.Remotes.
func applyVenueWeightOverrides(cfg *Config, pairs []string) {
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		var idx int
		var weight float64
		if _, err := fmt.Sscanf(parts[0], "%d", &idx); err != nil {
			continue
		}
		if _, err := fmt.Sscanf(parts[1], "%f", &weight); err != nil {
			continue
		}
		if idx >= 0 && idx < len(cfg.Remotes) {
			cfg.Remotes[idx].TrustFactor = weight
		}
	}
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Auth.Key == "" {
		return fmt.Errorf("auth.key is required (set --auth-key or TACTIC_AUTH_KEY)")
	}
	if c.Home.RESTBaseURL == "" {
		return fmt.Errorf("home.rest_base_url is required")
	}
	if c.Home.WSURL == "" {
		return fmt.Errorf("home.ws_url is required")
	}
	if c.Strategy.Gamma <= 0 {
		return fmt.Errorf("strategy.gamma must be > 0")
	}
	if c.Strategy.BaseSize <= 0 {
		return fmt.Errorf("strategy.base_size must be > 0")
	}
	if c.Risk.OrderBudget <= 0 {
		return fmt.Errorf("risk.order_budget must be > 0")
	}
	if c.Risk.MaxConsecutiveBadResets <= 0 {
		return fmt.Errorf("risk.max_consecutive_bad_resets must be > 0")
	}
	if c.HTML.Path == "" {
		return fmt.Errorf("html.path is required (set --html)")
	}
	return nil
}
