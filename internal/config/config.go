// Package config loads the service's YAML configuration, following
// nazandr-cp-epoch-server's internal/config pattern of a single
// gopkg.in/yaml.v3-decoded struct loaded once at startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tapedrive-io/tape/internal/logging"
)

// Config is the root of the service's YAML configuration file.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Store   StoreConfig    `yaml:"store"`
	Logging logging.Config `yaml:"logging"`
	Mining  MiningConfig   `yaml:"mining"`
}

// ServerConfig controls the HTTP façade (internal/api).
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig controls the badger-backed persistence layer.
type StoreConfig struct {
	DataDir string `yaml:"data_dir"`
}

// MiningConfig selects the PoW verifier the mining service is wired
// against. "keccak" (the in-repo KeccakPowVerifier reference
// implementation) is the only built-in choice; a production deployment
// would substitute its own memory-hard solver behind the same
// primitives.PowVerifier contract (spec.md §1 treats the solver as an
// external collaborator).
type MiningConfig struct {
	PowVerifier string `yaml:"pow_verifier"`
}

// Default returns the configuration a freshly-cloned repo should boot
// with when no config file is supplied.
func Default() Config {
	return Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Store:   StoreConfig{DataDir: "./data/tapedrive"},
		Logging: logging.Default(),
		Mining:  MiningConfig{PowVerifier: "keccak"},
	}
}

// Load reads and decodes the YAML file at path, filling any field left
// zero in the file from Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = Default().Server.Port
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = Default().Store.DataDir
	}
	return &cfg, nil
}
