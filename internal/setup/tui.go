// Package setup provides the interactive terminal configuration wizard.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

type wizardYaml struct {
	Platform        string   `yaml:"platform"`
	RPCURL          string   `yaml:"rpc_url,omitempty"`
	ChainID         int64    `yaml:"chain_id,omitempty"`
	ContractAddress string   `yaml:"contract_address,omitempty"`
	Identity        string   `yaml:"identity,omitempty"`
	HardCap         string   `yaml:"hard_cap"`
	TokenPrice      string   `yaml:"token_price"`
	MinContribution string   `yaml:"min_contribution"`
	MaxContribution string   `yaml:"max_contribution"`
	LaunchPrice     string   `yaml:"launch_price,omitempty"`
	PollInterval    string   `yaml:"poll_interval,omitempty"`
	WebAddr         string   `yaml:"web_addr,omitempty"`
	TLSDomains      []string `yaml:"tls_domains,omitempty"`
}

// RunTUI launches the terminal configuration wizard and writes
// config.gen.yaml on confirmation.
func RunTUI() error {
	var (
		platform        string
		rpcURL          string
		chainIDStr      string
		contractAddress string
		identity        string
		hardCapStr      string
		tokenPriceStr   string
		minStr          string
		maxStr          string
		launchPriceStr  string
		pollIntervalStr string
		webAddr         string
		confirm         bool
	)

	// defaults
	chainIDStr = "1"
	hardCapStr = "500000"
	tokenPriceStr = "0.05"
	minStr = "50"
	maxStr = "5000"
	launchPriceStr = "0.08"
	pollIntervalStr = "15s"
	webAddr = ":8080"

	// step 1: platform
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PRESALE CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your presale surface in a few steps.\n"))

	fmt.Println(stepStyle.Render("STEP 1: PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Gateway Platform").
				Options(
					huh.NewOption("Ethereum (JSON-RPC)", "ethereum"),
					huh.NewOption("Simulation", "simulate"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: chain access (ethereum only)
	if platform == "ethereum" {
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("PRESALE CONFIG WIZARD"))
		fmt.Println(stepStyle.Render("STEP 2: CHAIN"))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("JSON-RPC URL").
					Description("e.g. https://mainnet.infura.io/v3/<key>").
					Value(&rpcURL).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("rpc url cannot be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("Chain ID").
					Description("e.g. 1 for mainnet, 11155111 for sepolia").
					Value(&chainIDStr).
					Validate(validateInt),
				huh.NewInput().
					Title("Presale Contract Address").
					Description("0x… address; leave empty if not deployed yet").
					Value(&contractAddress),
				huh.NewInput().
					Title("Tracked Account Address").
					Description("Identity whose position is displayed (optional)").
					Value(&identity),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	// step 3: sale parameters
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PRESALE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: SALE PARAMETERS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hard Cap").
				Description("Maximum aggregate amount in sale currency").
				Value(&hardCapStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Token Price").
				Description("Price per token in sale currency").
				Value(&tokenPriceStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Min Contribution").
				Value(&minStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Max Contribution").
				Value(&maxStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Projected Launch Price").
				Description("Used for the profit preview, 0 to disable").
				Value(&launchPriceStr),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 4: service
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PRESALE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: SERVICE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Snapshot Poll Interval").
				Description("Duration string (e.g. 10s, 1m)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewInput().
				Title("Dashboard Address").
				Description("Listen address, empty disables the dashboard").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PRESALE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Platform: %s\nHard cap: %s\nToken price: %s\nBounds: %s .. %s\nPoll: %s\n",
		platform, hardCapStr, tokenPriceStr, minStr, maxStr, pollIntervalStr,
	)
	if platform == "ethereum" {
		summary += fmt.Sprintf("RPC: %s\nChain: %s\nContract: %s\n", rpcURL, chainIDStr, contractAddress)
	}
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	var chainID int64
	fmt.Sscanf(chainIDStr, "%d", &chainID)

	cfg := wizardYaml{
		Platform:        platform,
		RPCURL:          rpcURL,
		ChainID:         chainID,
		ContractAddress: contractAddress,
		Identity:        identity,
		HardCap:         hardCapStr,
		TokenPrice:      tokenPriceStr,
		MinContribution: minStr,
		MaxContribution: maxStr,
		LaunchPrice:     launchPriceStr,
		PollInterval:    pollIntervalStr,
		WebAddr:         webAddr,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting service...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateInt(s string) error {
	var v int64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return fmt.Errorf("must be an integer")
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
