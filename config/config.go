// Package config loads presale service configuration from a YAML file or
// CLI flags. Monetary fields are parsed into decimals from strings.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultPollInterval = 15 * time.Second
	defaultWebAddr      = ":8080"
	defaultReceiptsDir  = "./wal/receipts"
	defaultSaleDuration = 72 * time.Hour
)

// Config is the resolved service configuration.
type Config struct {
	// Platform gateway backend: "ethereum" or "simulate".
	Platform string
	// RPCURL JSON-RPC endpoint of the chain node (ethereum platform).
	RPCURL string
	// ChainID required chain identifier the node must be on.
	ChainID int64
	// ContractAddress deployed presale contract. May be empty: the sale then
	// surfaces as "not configured" instead of failing startup.
	ContractAddress string
	// Identity address whose position is tracked. Optional.
	Identity string

	// Sale parameters (used by the simulator and for display defaults).
	HardCap         decimal.Decimal
	TokenPrice      decimal.Decimal
	MinContribution decimal.Decimal
	MaxContribution decimal.Decimal
	LaunchPrice     decimal.Decimal
	SaleDuration    time.Duration

	// PollInterval cadence of the periodic snapshot refresh.
	PollInterval time.Duration
	// WebAddr listen address of the dashboard; empty disables it.
	WebAddr string
	// TLSDomains enables automatic TLS for the dashboard when non-empty.
	TLSDomains []string
	// ReceiptsDir directory of the submission receipt WAL.
	ReceiptsDir string

	// Setup requests the interactive configuration wizard.
	Setup bool
}

type configTmp struct {
	Platform           string   `yaml:"platform"`
	RPCURL             string   `yaml:"rpc_url,omitempty"`
	ChainID            int64    `yaml:"chain_id,omitempty"`
	ContractAddress    string   `yaml:"contract_address,omitempty"`
	Identity           string   `yaml:"identity,omitempty"`
	HardCapStr         string   `yaml:"hard_cap"`
	TokenPriceStr      string   `yaml:"token_price"`
	MinContributionStr string   `yaml:"min_contribution"`
	MaxContributionStr string   `yaml:"max_contribution"`
	LaunchPriceStr     string   `yaml:"launch_price,omitempty"`
	SaleDurationStr    string   `yaml:"sale_duration,omitempty"`
	PollIntervalStr    string   `yaml:"poll_interval,omitempty"`
	WebAddr            string   `yaml:"web_addr,omitempty"`
	TLSDomains         []string `yaml:"tls_domains,omitempty"`
	ReceiptsDir        string   `yaml:"receipts_dir,omitempty"`
}

// Get resolves configuration from --config (YAML) or plain CLI flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	setup := flag.Bool("setup", false, "run interactive configuration wizard")
	platform := flag.String("platform", "simulate", "gateway platform: ethereum or simulate")
	rpcURL := flag.String("rpc-url", "", "json-rpc endpoint of the chain node")
	chainID := flag.Int64("chain-id", 1, "required chain id")
	contract := flag.String("contract", "", "presale contract address")
	identity := flag.String("identity", "", "tracked account address")
	hardCap := flag.String("hard-cap", "500000", "sale hard cap")
	tokenPrice := flag.String("token-price", "0.05", "price per token in sale currency")
	minContribution := flag.String("min-contribution", "50", "minimum single contribution")
	maxContribution := flag.String("max-contribution", "5000", "maximum single contribution")
	launchPrice := flag.String("launch-price", "0", "projected launch price for profit preview")
	pollInterval := flag.Duration("poll-interval", defaultPollInterval, "snapshot refresh interval")
	webAddr := flag.String("web-addr", defaultWebAddr, "dashboard listen address, empty disables")
	flag.Parse()

	if *setup {
		return Config{Setup: true}, nil
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		Platform:        *platform,
		RPCURL:          *rpcURL,
		ChainID:         *chainID,
		ContractAddress: *contract,
		Identity:        *identity,
		SaleDuration:    defaultSaleDuration,
		PollInterval:    *pollInterval,
		WebAddr:         *webAddr,
		ReceiptsDir:     defaultReceiptsDir,
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"--hard-cap", *hardCap, &cfg.HardCap},
		{"--token-price", *tokenPrice, &cfg.TokenPrice},
		{"--min-contribution", *minContribution, &cfg.MinContribution},
		{"--max-contribution", *maxContribution, &cfg.MaxContribution},
		{"--launch-price", *launchPrice, &cfg.LaunchPrice},
	}
	for _, f := range fields {
		value, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s provided, %s=%s", f.name, f.name, f.raw)
		}
		*f.dst = value
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads configuration from a YAML file at path.
func Load(path string) (Config, error) {
	return getYaml(path)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}
	return fromTmp(tmp)
}

func fromTmp(tmp configTmp) (Config, error) {
	cfg := Config{
		Platform:        tmp.Platform,
		RPCURL:          tmp.RPCURL,
		ChainID:         tmp.ChainID,
		ContractAddress: tmp.ContractAddress,
		Identity:        tmp.Identity,
		WebAddr:         tmp.WebAddr,
		TLSDomains:      tmp.TLSDomains,
		ReceiptsDir:     tmp.ReceiptsDir,
	}

	if tmp.SaleDurationStr != "" {
		d, err := time.ParseDuration(tmp.SaleDurationStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'sale_duration' param in yaml config (must be a duration like 72h), error: %w", err)
		}
		cfg.SaleDuration = d
	}
	if tmp.PollIntervalStr != "" {
		d, err := time.ParseDuration(tmp.PollIntervalStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'poll_interval' param in yaml config (must be a duration like 15s), error: %w", err)
		}
		cfg.PollInterval = d
	}

	if cfg.Platform == "" {
		cfg.Platform = "simulate"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	if cfg.SaleDuration <= 0 {
		cfg.SaleDuration = defaultSaleDuration
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ReceiptsDir == "" {
		cfg.ReceiptsDir = defaultReceiptsDir
	}

	fields := []struct {
		name     string
		raw      string
		fallback string
		dst      *decimal.Decimal
	}{
		{"hard_cap", tmp.HardCapStr, "", &cfg.HardCap},
		{"token_price", tmp.TokenPriceStr, "", &cfg.TokenPrice},
		{"min_contribution", tmp.MinContributionStr, "", &cfg.MinContribution},
		{"max_contribution", tmp.MaxContributionStr, "", &cfg.MaxContribution},
		{"launch_price", tmp.LaunchPriceStr, "0", &cfg.LaunchPrice},
	}
	for _, f := range fields {
		raw := f.raw
		if raw == "" {
			raw = f.fallback
		}
		if raw == "" {
			return Config{}, fmt.Errorf("missing '%s' param in yaml config", f.name)
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect '%s' param in yaml config (must be a decimal), error: %w", f.name, err)
		}
		*f.dst = value
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces structural invariants. A missing contract address is
// deliberately NOT an error here: an undeployed sale must surface as a
// recoverable "not configured" state at refresh time, not a startup crash.
func (c *Config) Validate() error {
	if c.Platform != "ethereum" && c.Platform != "simulate" {
		return fmt.Errorf("unsupported platform %q, want ethereum or simulate", c.Platform)
	}
	if c.Platform == "ethereum" && c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required for the ethereum platform")
	}
	if c.HardCap.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("hard_cap must be positive, got %s", c.HardCap.String())
	}
	if c.TokenPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("token_price must be positive, got %s", c.TokenPrice.String())
	}
	if c.MinContribution.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("min_contribution must be positive, got %s", c.MinContribution.String())
	}
	if c.MinContribution.GreaterThan(c.MaxContribution) {
		return fmt.Errorf("min_contribution %s exceeds max_contribution %s",
			c.MinContribution.String(), c.MaxContribution.String())
	}
	if c.LaunchPrice.IsNegative() {
		return fmt.Errorf("launch_price cannot be negative, got %s", c.LaunchPrice.String())
	}
	return nil
}
