package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"sathu/config"
	"sathu/core/events"
	"sathu/core/state"
	"sathu/core/types"
	"sathu/crypto"
	"sathu/native/common"
	"sathu/native/companion"
	"sathu/native/token"
	"sathu/observability/logging"
	"sathu/storage"
)

const operatorPassEnv = "SATHU_OPERATOR_PASS"

const usage = `Usage: sathud [flags] <command> [args]

Commands:
  info                               print token metadata and supply state
  balance <address>                  print an account balance
  mint <to> <amount> <deed> [source] [category]
                                     mint through the companion with audit tags
  offer <amount> <offering>          burn the operator's tokens as an offering
  pause | unpause                    toggle the ledger pause flag
  grant <role> <address>             grant a ledger role (admin|minter|pauser)
  revoke <role> <address>            revoke a ledger role
`

// eventLogger forwards emitted ledger events into the structured log stream,
// flattening the rendered attribute map onto the log record.
type eventLogger struct {
	logger *slog.Logger
}

func (e eventLogger) Emit(evt events.Event) {
	attrs := []any{slog.String("type", evt.EventType())}
	if rendered, ok := evt.(interface{ Event() *types.Event }); ok {
		for key, value := range rendered.Event().Attributes {
			attrs = append(attrs, logging.MaskField(key, value))
		}
	}
	e.logger.Info("ledger event", attrs...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("SATHU_ENV"))
	logger := logging.Setup("sathud", env)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(logger, cfg, args); err != nil {
		logger.Error("Command failed", slog.String("command", args[0]), slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, args []string) error {
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	admin, err := cfg.AdminAddress()
	if err != nil {
		return err
	}
	minter, err := cfg.MinterAddress()
	if err != nil {
		return err
	}
	companionAdmin, err := cfg.CompanionAdminAddress()
	if err != nil {
		return err
	}
	companionMinter, err := cfg.CompanionMinterAddress()
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	passphrase := os.Getenv(operatorPassEnv)
	logger.Info("Loading operator keystore",
		slog.String("path", cfg.OperatorKeystorePath),
		logging.MaskField("passphrase", passphrase))
	operatorKey, err := crypto.LoadFromKeystore(cfg.OperatorKeystorePath, passphrase)
	if err != nil {
		return fmt.Errorf("load operator keystore: %w", err)
	}
	operator := operatorKey.PubKey().Address().Raw()

	manager := state.NewManager(db)
	emitter := eventLogger{logger: logger}
	ledger, err := token.NewLedger(manager, emitter, token.Config{
		Admin:   admin,
		Minter:  minter,
		ChainID: cfg.ChainID,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	comp, err := companion.New(ledger, manager, emitter, companion.Config{
		Self:   operator,
		Admin:  companionAdmin,
		Minter: companionMinter,
	})
	if err != nil {
		return fmt.Errorf("open companion: %w", err)
	}

	switch args[0] {
	case "info":
		return printInfo(ledger)
	case "balance":
		if len(args) != 2 {
			return fmt.Errorf("usage: balance <address>")
		}
		addr, err := parseAddress(args[1])
		if err != nil {
			return err
		}
		balance, err := ledger.BalanceOf(addr)
		if err != nil {
			return err
		}
		fmt.Println(balance.String())
		return nil
	case "mint":
		if len(args) < 4 || len(args) > 6 {
			return fmt.Errorf("usage: mint <to> <amount> <deed> [source] [category]")
		}
		to, err := parseAddress(args[1])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		source, category := "", ""
		if len(args) > 4 {
			source = args[4]
		}
		if len(args) > 5 {
			category = args[5]
		}
		return comp.MintForDeedTagged(operator, to, amount, args[3], source, category)
	case "offer":
		if len(args) != 3 {
			return fmt.Errorf("usage: offer <amount> <offering>")
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		if err := ledger.Approve(operator, comp.Self(), amount); err != nil {
			return err
		}
		return comp.BurnWithOffering(operator, amount, args[2])
	case "pause":
		return ledger.Pause(operator)
	case "unpause":
		return ledger.Unpause(operator)
	case "grant", "revoke":
		if len(args) != 3 {
			return fmt.Errorf("usage: %s <role> <address>", args[0])
		}
		role, err := parseRole(args[1])
		if err != nil {
			return err
		}
		addr, err := parseAddress(args[2])
		if err != nil {
			return err
		}
		if args[0] == "grant" {
			return ledger.GrantRole(operator, role, addr)
		}
		return ledger.RevokeRole(operator, role, addr)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printInfo(ledger *token.Ledger) error {
	supply, err := ledger.TotalSupply()
	if err != nil {
		return err
	}
	minted, err := ledger.DailyMintedToday()
	if err != nil {
		return err
	}
	paused, err := ledger.Paused()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s), %d decimals\n", token.Name, token.Symbol, token.Decimals)
	fmt.Printf("total supply:  %s\n", supply)
	fmt.Printf("cap:           %s\n", ledger.Cap())
	fmt.Printf("minted today:  %s (limit %s)\n", minted, ledger.MaxDailyMint())
	fmt.Printf("paused:        %t\n", paused)
	return nil
}

func parseAddress(value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return [20]byte{}, fmt.Errorf("invalid address %q: %w", value, err)
	}
	return addr.Raw(), nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func parseRole(value string) (common.Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "admin":
		return common.RoleAdmin, nil
	case "minter":
		return common.RoleMinter, nil
	case "pauser":
		return common.RolePauser, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}
