package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"sathu/crypto"
)

func bech32Addr(b byte) string {
	raw := make([]byte, crypto.AddressLength)
	raw[crypto.AddressLength-1] = b
	return crypto.MustNewAddress(crypto.SathuPrefix, raw).String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadCreatesDefaultWithKeystore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file should exist: %v", err)
	}
	if _, err := os.Stat(cfg.OperatorKeystorePath); err != nil {
		t.Fatalf("operator keystore should exist: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	key, err := crypto.LoadFromKeystore(cfg.OperatorKeystorePath, "")
	if err != nil {
		t.Fatalf("load keystore: %v", err)
	}
	if key.PubKey().Address().String() != cfg.Admin {
		t.Fatalf("default admin should be the generated operator")
	}
}

func TestLoadAppliesFallbacks(t *testing.T) {
	path := writeConfig(t, fmt.Sprintf(`
Admin = %q
Minter = %q
OperatorKeystorePath = "/tmp/unused.keystore"
`, bech32Addr(0x01), bech32Addr(0x02)))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "./sathu-data" {
		t.Fatalf("DataDir fallback = %q", cfg.DataDir)
	}
	if cfg.ChainID != 1 {
		t.Fatalf("ChainID fallback = %d", cfg.ChainID)
	}
}

func TestValidateRequiresAddresses(t *testing.T) {
	cfg := &Config{Minter: bech32Addr(0x02)}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("missing admin must fail validation")
	}

	cfg = &Config{Admin: "not-bech32", Minter: bech32Addr(0x02)}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("malformed admin must fail validation")
	}

	zero := crypto.MustNewAddress(crypto.SathuPrefix, make([]byte, crypto.AddressLength)).String()
	cfg = &Config{Admin: zero, Minter: bech32Addr(0x02)}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero admin must fail validation")
	}
}

func TestCompanionRolesFallBackToLedgerRoles(t *testing.T) {
	cfg := &Config{Admin: bech32Addr(0x01), Minter: bech32Addr(0x02)}
	admin, err := cfg.CompanionAdminAddress()
	if err != nil {
		t.Fatalf("companion admin: %v", err)
	}
	ledgerAdmin, _ := cfg.AdminAddress()
	if admin != ledgerAdmin {
		t.Fatalf("companion admin should inherit the ledger admin")
	}

	cfg.CompanionAdmin = bech32Addr(0x03)
	admin, err = cfg.CompanionAdminAddress()
	if err != nil {
		t.Fatalf("companion admin: %v", err)
	}
	if admin == ledgerAdmin {
		t.Fatalf("explicit companion admin should win")
	}
}

func TestParamsOverrides(t *testing.T) {
	cfg := &Config{
		Admin:  bech32Addr(0x01),
		Minter: bech32Addr(0x02),
		Limits: Limits{Cap: "1000", MaxMintPerTx: "10"},
	}
	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if params.Cap.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("cap override = %s", params.Cap)
	}
	if params.MaxMintPerTx.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("per-tx override = %s", params.MaxMintPerTx)
	}
	if params.MaxDailyMint != nil {
		t.Fatalf("unset limit should stay nil for the ledger defaults")
	}

	cfg.Limits.Cap = "-5"
	if _, err := cfg.Params(); err == nil {
		t.Fatalf("negative cap must fail")
	}
	cfg.Limits.Cap = "not-a-number"
	if _, err := cfg.Params(); err == nil {
		t.Fatalf("malformed cap must fail")
	}
}
