package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"sathu/crypto"
	"sathu/native/token"

	"github.com/BurntSushi/toml"
)

// Limits optionally overrides the ledger supply ceilings. Values are decimal
// strings in base units; empty fields keep the production defaults.
type Limits struct {
	Cap          string `toml:"Cap,omitempty"`
	MaxMintPerTx string `toml:"MaxMintPerTx,omitempty"`
	MaxDailyMint string `toml:"MaxDailyMint,omitempty"`
}

// Config is the deployment configuration for the ledger service. Admin and
// Minter seed the ledger's genesis roles; CompanionAdmin and CompanionMinter
// seed the companion's. The operator keystore holds the key the companion
// acts with, so its address needs the ledger minter role.
type Config struct {
	DataDir              string `toml:"DataDir"`
	ChainID              uint64 `toml:"ChainID"`
	Environment          string `toml:"Environment"`
	Admin                string `toml:"Admin"`
	Minter               string `toml:"Minter"`
	CompanionAdmin       string `toml:"CompanionAdmin"`
	CompanionMinter      string `toml:"CompanionMinter"`
	OperatorKeystorePath string `toml:"OperatorKeystorePath"`
	Limits               Limits `toml:"Limits"`
}

// Load reads the configuration at path, writing a fresh default file (with a
// newly generated operator keystore) when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./sathu-data"
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = 1
	}
	if cfg.OperatorKeystorePath == "" {
		if err := ensureKeystore(path, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks that every configured address parses and is non-zero. The
// companion role fields may be empty, in which case they inherit the ledger's.
func (c *Config) Validate() error {
	if _, err := requireAddress("Admin", c.Admin); err != nil {
		return err
	}
	if _, err := requireAddress("Minter", c.Minter); err != nil {
		return err
	}
	if strings.TrimSpace(c.CompanionAdmin) != "" {
		if _, err := requireAddress("CompanionAdmin", c.CompanionAdmin); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.CompanionMinter) != "" {
		if _, err := requireAddress("CompanionMinter", c.CompanionMinter); err != nil {
			return err
		}
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	return nil
}

// AdminAddress returns the parsed ledger admin.
func (c *Config) AdminAddress() ([20]byte, error) {
	return requireAddress("Admin", c.Admin)
}

// MinterAddress returns the parsed ledger minter.
func (c *Config) MinterAddress() ([20]byte, error) {
	return requireAddress("Minter", c.Minter)
}

// CompanionAdminAddress returns the companion admin, falling back to the
// ledger admin when unset.
func (c *Config) CompanionAdminAddress() ([20]byte, error) {
	if strings.TrimSpace(c.CompanionAdmin) == "" {
		return c.AdminAddress()
	}
	return requireAddress("CompanionAdmin", c.CompanionAdmin)
}

// CompanionMinterAddress returns the companion minter, falling back to the
// ledger minter when unset.
func (c *Config) CompanionMinterAddress() ([20]byte, error) {
	if strings.TrimSpace(c.CompanionMinter) == "" {
		return c.MinterAddress()
	}
	return requireAddress("CompanionMinter", c.CompanionMinter)
}

// Params resolves the configured limit overrides into ledger parameters.
func (c *Config) Params() (token.Params, error) {
	var params token.Params
	var err error
	if params.Cap, err = parseAmount("Limits.Cap", c.Limits.Cap); err != nil {
		return token.Params{}, err
	}
	if params.MaxMintPerTx, err = parseAmount("Limits.MaxMintPerTx", c.Limits.MaxMintPerTx); err != nil {
		return token.Params{}, err
	}
	if params.MaxDailyMint, err = parseAmount("Limits.MaxDailyMint", c.Limits.MaxDailyMint); err != nil {
		return token.Params{}, err
	}
	return params, nil
}

func requireAddress(field, value string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return out, fmt.Errorf("config: %s is required", field)
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return out, fmt.Errorf("config: invalid %s: %w", field, err)
	}
	if addr.IsZero() {
		return out, fmt.Errorf("config: %s must not be the zero address", field)
	}
	return addr.Raw(), nil
}

func parseAmount(field, value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("config: invalid %s: %q", field, value)
	}
	return amount, nil
}

func ensureKeystore(configPath string, cfg *Config) error {
	keystorePath := defaultKeystorePath(configPath)
	if _, err := os.Stat(keystorePath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	cfg.OperatorKeystorePath = keystorePath
	return persist(configPath, cfg)
}

func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, key, ""); err != nil {
		return nil, err
	}

	operator := key.PubKey().Address().String()
	cfg := &Config{
		DataDir:              "./sathu-data",
		ChainID:              1,
		Environment:          "local",
		Admin:                operator,
		Minter:               operator,
		OperatorKeystorePath: keystorePath,
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultKeystorePath(configPath string) string {
	dir := filepath.Dir(configPath)
	return filepath.Join(dir, "operator.keystore")
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
