package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pushchain/unjail-console/internal/chain"
)

// Config holds operator configuration. Precedence, lowest first: defaults,
// config file, environment, command-line flags.
type Config struct {
	Chain          string        `yaml:"chain"`
	SignMode       string        `yaml:"sign_mode"`
	RPC            string        `yaml:"rpc"`  // empty uses the chain's default endpoint
	HomeDir        string        `yaml:"home"` // chain binary home; empty uses the binary's default
	KeyringBackend string        `yaml:"keyring_backend"`
	BinPath        string        `yaml:"bin"` // empty uses the chain's binary from PATH
	ChainsFile     string        `yaml:"chains_file"`
	GasLimit       string        `yaml:"gas_limit"`
	GasPrice       string        `yaml:"gas_price"` // empty uses the chain's default price
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	TxTimeout      time.Duration `yaml:"tx_timeout"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Chain:          "pacific-1",
		SignMode:       "amino",
		KeyringBackend: "os",
		GasLimit:       "100000",
		ConnectTimeout: 60 * time.Second,
		TxTimeout:      90 * time.Second,
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "unjail-console", "config.yaml")
}

// Load merges defaults, the YAML file at path and environment overrides.
// An empty path reads DefaultPath if it exists.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("UNJAIL_HOME"); v != "" {
		cfg.HomeDir = v
	}
	if v := os.Getenv("UNJAIL_CHAIN"); v != "" {
		cfg.Chain = v
	}
	if v := os.Getenv("UNJAIL_KEYRING_BACKEND"); v != "" {
		cfg.KeyringBackend = v
	}
	if v := os.Getenv("UNJAIL_RPC"); v != "" {
		cfg.RPC = v
	}
	if v := os.Getenv("UNJAIL_BIN"); v != "" {
		cfg.BinPath = v
	}
}

// Binary returns the chain binary to run for c.
func (cfg Config) Binary(c chain.Option) string {
	if cfg.BinPath != "" {
		return cfg.BinPath
	}
	return c.Binary
}

// Endpoint returns the RPC endpoint to use for c.
func (cfg Config) Endpoint(c chain.Option) string {
	if cfg.RPC != "" {
		return cfg.RPC
	}
	return c.DefaultRPC
}

// Price returns the gas price to prefill for c.
func (cfg Config) Price(c chain.Option) string {
	if cfg.GasPrice != "" {
		return cfg.GasPrice
	}
	if c.DefaultGasPrice != "" {
		return c.DefaultGasPrice
	}
	return "0.02"
}

// Registry returns the built-in chains plus those from ChainsFile.
func (cfg Config) Registry() (*chain.Registry, error) {
	r := chain.Builtin()
	if cfg.ChainsFile == "" {
		return r, nil
	}
	extra, err := chain.LoadFile(cfg.ChainsFile)
	if err != nil {
		return nil, err
	}
	if err := r.Add(extra...); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.ChainsFile, err)
	}
	return r, nil
}
