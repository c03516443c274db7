package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"blend-swap/pkg/currency"
)

// Mainnet Uniswap V2 deployment and routing bases
const (
	DefaultRouter = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	DefaultWETH   = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

var DefaultRoutingBases = []string{
	"WETH",
	"DAI",
	"USDC",
	"USDT",
	"WBTC",
}

// Config holds the application configuration
type Config struct {
	// Chain connection
	RPCURL     string
	PrivateKey string
	ChainID    int64
	GasPrice   *int64

	// Contracts
	RouterAddress string
	BlendAddress  string
	WETHAddress   string

	// Trade settings
	SlippageBips  int64
	MaxHops       int
	SingleHopOnly bool
	RoutingBases  []string

	// Local state
	TokenListPath    string
	SessionPath      string
	TransactionsPath string

	// Runtime
	LogLevel      string
	ListenAddr    string
	WatchInterval time.Duration
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".blend-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("chain_id", 1)
	viper.SetDefault("router_address", DefaultRouter)
	viper.SetDefault("weth_address", DefaultWETH)
	viper.SetDefault("slippage_bips", 50)
	viper.SetDefault("max_hops", 3)
	viper.SetDefault("single_hop_only", false)
	viper.SetDefault("routing_bases", DefaultRoutingBases)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("watch_interval", "15s")

	// Read from environment variables
	viper.SetEnvPrefix("BLEND_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	// Create config struct
	cfg := &Config{
		RPCURL:           viper.GetString("rpc_url"),
		PrivateKey:       viper.GetString("private_key"),
		ChainID:          viper.GetInt64("chain_id"),
		RouterAddress:    viper.GetString("router_address"),
		BlendAddress:     viper.GetString("blend_address"),
		WETHAddress:      viper.GetString("weth_address"),
		SlippageBips:     viper.GetInt64("slippage_bips"),
		MaxHops:          viper.GetInt("max_hops"),
		SingleHopOnly:    viper.GetBool("single_hop_only"),
		RoutingBases:     viper.GetStringSlice("routing_bases"),
		TokenListPath:    viper.GetString("token_list"),
		SessionPath:      viper.GetString("session_path"),
		TransactionsPath: viper.GetString("transactions_path"),
		LogLevel:         viper.GetString("log_level"),
		ListenAddr:       viper.GetString("listen_addr"),
		WatchInterval:    viper.GetDuration("watch_interval"),
	}
	if viper.IsSet("gas_price") {
		gp := viper.GetInt64("gas_price")
		cfg.GasPrice = &gp
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

// Validate checks settings that never depend on the chain being reachable
func (c *Config) Validate() error {
	if c.SlippageBips < 0 || c.SlippageBips > 10_000 {
		return fmt.Errorf("slippage_bips must be between 0 and 10000, got %d", c.SlippageBips)
	}
	if c.MaxHops < 1 {
		return fmt.Errorf("max_hops must be at least 1, got %d", c.MaxHops)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("chain_id must be positive, got %d", c.ChainID)
	}
	for name, addr := range map[string]string{
		"router_address": c.RouterAddress,
		"weth_address":   c.WETHAddress,
		"blend_address":  c.BlendAddress,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("%s is not a valid address: %s", name, addr)
		}
	}
	return nil
}

// RequireChain validates the settings chain-dependent commands need
func (c *Config) RequireChain() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC URL not found. Please set BLEND_SWAP_RPC_URL environment variable or add rpc_url to .blend-swap.yaml")
	}
	if c.RouterAddress == "" {
		return fmt.Errorf("router address not configured")
	}
	return nil
}

// RequireSigner validates the settings commands that send transactions need
func (c *Config) RequireSigner() error {
	if err := c.RequireChain(); err != nil {
		return err
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private key not found. Please set BLEND_SWAP_PRIVATE_KEY environment variable")
	}
	if c.BlendAddress == "" {
		return fmt.Errorf("blend contract not found. Please set BLEND_SWAP_BLEND_ADDRESS environment variable or add blend_address to .blend-swap.yaml")
	}
	return nil
}

// Slippage returns the allowed slippage as a fraction
func (c *Config) Slippage() currency.Percent {
	return currency.FromBips(c.SlippageBips)
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
