package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeYaml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYaml(t *testing.T) {
	path := writeYaml(t, `
platform: ethereum
rpc_url: https://rpc.example.org
chain_id: 11155111
contract_address: "0x1111111111111111111111111111111111111111"
identity: "0x2222222222222222222222222222222222222222"
hard_cap: "500000"
token_price: "0.05"
min_contribution: "50"
max_contribution: "5000"
launch_price: "0.08"
sale_duration: 96h
poll_interval: 10s
web_addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "ethereum", cfg.Platform)
	require.EqualValues(t, 11155111, cfg.ChainID)
	require.True(t, decimal.NewFromInt(500000).Equal(cfg.HardCap))
	require.True(t, decimal.RequireFromString("0.05").Equal(cfg.TokenPrice))
	require.True(t, decimal.RequireFromString("0.08").Equal(cfg.LaunchPrice))
	require.Equal(t, 96*time.Hour, cfg.SaleDuration)
	require.Equal(t, 10*time.Second, cfg.PollInterval)
	require.Equal(t, ":9090", cfg.WebAddr)
	require.Equal(t, defaultReceiptsDir, cfg.ReceiptsDir)
}

func TestLoadYamlDefaults(t *testing.T) {
	path := writeYaml(t, `
hard_cap: "100000"
token_price: "0.1"
min_contribution: "10"
max_contribution: "1000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "simulate", cfg.Platform)
	require.EqualValues(t, 1, cfg.ChainID)
	require.Equal(t, defaultPollInterval, cfg.PollInterval)
	require.Equal(t, defaultSaleDuration, cfg.SaleDuration)
	require.True(t, cfg.LaunchPrice.IsZero())
	require.Empty(t, cfg.ContractAddress, "a missing contract address is a waiting state, not an error")
}

func TestLoadYamlRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing hard cap", "token_price: \"0.1\"\nmin_contribution: \"10\"\nmax_contribution: \"100\"\n"},
		{"non-decimal price", "hard_cap: \"100\"\ntoken_price: \"cheap\"\nmin_contribution: \"10\"\nmax_contribution: \"100\"\n"},
		{"bad duration", "hard_cap: \"100\"\ntoken_price: \"0.1\"\nmin_contribution: \"10\"\nmax_contribution: \"100\"\npoll_interval: often\n"},
		{"min above max", "hard_cap: \"100\"\ntoken_price: \"0.1\"\nmin_contribution: \"200\"\nmax_contribution: \"100\"\n"},
		{"ethereum without rpc", "platform: ethereum\nhard_cap: \"100\"\ntoken_price: \"0.1\"\nmin_contribution: \"10\"\nmax_contribution: \"100\"\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeYaml(t, c.yaml))
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Platform:        "simulate",
		HardCap:         decimal.NewFromInt(1000),
		TokenPrice:      decimal.RequireFromString("0.05"),
		MinContribution: decimal.NewFromInt(10),
		MaxContribution: decimal.NewFromInt(100),
	}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Platform = "solana"
	require.Error(t, bad.Validate())

	bad = cfg
	bad.LaunchPrice = decimal.NewFromInt(-1)
	require.Error(t, bad.Validate())

	bad = cfg
	bad.TokenPrice = decimal.Zero
	require.Error(t, bad.Validate())
}
