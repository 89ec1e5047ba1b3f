package token

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"sathu/native/common"
)

func TestDayKey(t *testing.T) {
	if got := dayKey(time.Unix(0, 0)); got != 0 {
		t.Fatalf("dayKey(0) = %d, want 0", got)
	}
	if got := dayKey(time.Unix(86399, 0)); got != 0 {
		t.Fatalf("dayKey(86399) = %d, want 0", got)
	}
	if got := dayKey(time.Unix(86400, 0)); got != 1 {
		t.Fatalf("dayKey(86400) = %d, want 1", got)
	}
}

func TestMintPerTxLimitBoundary(t *testing.T) {
	fx := newFixture(t, Params{})
	limit := fx.ledger.MaxMintPerTx()

	if err := fx.ledger.Mint(minterAddr, aliceAddr, limit); err != nil {
		t.Fatalf("mint at the per-tx limit should pass: %v", err)
	}

	over := new(big.Int).Add(limit, big.NewInt(1))
	err := fx.ledger.Mint(minterAddr, aliceAddr, over)
	var limitErr *MintLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected mint limit error, got %v", err)
	}
	if limitErr.Attempted.Cmp(over) != 0 || limitErr.Limit.Cmp(limit) != 0 {
		t.Fatalf("unexpected limit error fields: %+v", limitErr)
	}
	if got := mustBalance(t, fx.ledger, aliceAddr); got.Cmp(limit) != 0 {
		t.Fatalf("failed mint must not credit, got %s", got)
	}
}

func TestDailyMintLimit(t *testing.T) {
	fx := newFixture(t, Params{})
	perTx := fx.ledger.MaxMintPerTx()

	// Fifty max-size mints exactly exhaust the daily budget.
	for i := 0; i < 50; i++ {
		if err := fx.ledger.Mint(minterAddr, aliceAddr, perTx); err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
	}
	if got, err := fx.ledger.DailyMintedToday(); err != nil || got.Cmp(fx.ledger.MaxDailyMint()) != 0 {
		t.Fatalf("minted today = %s (%v), want %s", got, err, fx.ledger.MaxDailyMint())
	}

	err := fx.ledger.Mint(minterAddr, aliceAddr, big.NewInt(1))
	var dailyErr *DailyLimitError
	if !errors.As(err, &dailyErr) {
		t.Fatalf("expected daily limit error, got %v", err)
	}
}

func TestDailyLimitIsGlobalAcrossMinters(t *testing.T) {
	fx := newFixture(t, Params{MaxMintPerTx: tokens(100), MaxDailyMint: tokens(150)})
	if err := fx.ledger.GrantRole(adminAddr, common.RoleMinter, aliceAddr); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := fx.ledger.Mint(minterAddr, bobAddr, tokens(100)); err != nil {
		t.Fatalf("first minter: %v", err)
	}
	// The budget is shared, not per minter.
	err := fx.ledger.Mint(aliceAddr, bobAddr, tokens(100))
	var dailyErr *DailyLimitError
	if !errors.As(err, &dailyErr) {
		t.Fatalf("expected daily limit error for the second minter, got %v", err)
	}
	if err := fx.ledger.Mint(aliceAddr, bobAddr, tokens(50)); err != nil {
		t.Fatalf("mint within remainder: %v", err)
	}
}

func TestDailyLimitResetsNextDay(t *testing.T) {
	fx := newFixture(t, Params{MaxMintPerTx: tokens(100), MaxDailyMint: tokens(100)})
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	err := fx.ledger.Mint(minterAddr, aliceAddr, big.NewInt(1))
	var dailyErr *DailyLimitError
	if !errors.As(err, &dailyErr) {
		t.Fatalf("expected daily limit error, got %v", err)
	}

	fx.advance(24 * time.Hour)
	if got, err := fx.ledger.DailyMintedToday(); err != nil || got.Sign() != 0 {
		t.Fatalf("new day should start at zero, got %s (%v)", got, err)
	}
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(100)); err != nil {
		t.Fatalf("mint on the next day: %v", err)
	}
}

func TestBurnDoesNotRefundDailyBudget(t *testing.T) {
	fx := newFixture(t, Params{MaxMintPerTx: tokens(100), MaxDailyMint: tokens(100)})
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := fx.ledger.Burn(aliceAddr, tokens(100)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	err := fx.ledger.Mint(minterAddr, aliceAddr, big.NewInt(1))
	var dailyErr *DailyLimitError
	if !errors.As(err, &dailyErr) {
		t.Fatalf("burning must not free the daily budget, got %v", err)
	}
}

func TestCapBlocksMint(t *testing.T) {
	fx := newFixture(t, Params{Cap: tokens(500), MaxMintPerTx: tokens(300), MaxDailyMint: tokens(10_000)})
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(300)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(200)); err != nil {
		t.Fatalf("mint to cap: %v", err)
	}

	err := fx.ledger.Mint(minterAddr, aliceAddr, big.NewInt(1))
	var capErr *CapError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected cap error, got %v", err)
	}
}

func TestBurnFreesCapHeadroom(t *testing.T) {
	fx := newFixture(t, Params{Cap: tokens(100), MaxMintPerTx: tokens(100), MaxDailyMint: tokens(10_000)})
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := fx.ledger.Burn(aliceAddr, tokens(40)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(40)); err != nil {
		t.Fatalf("cap headroom freed by the burn should admit the mint: %v", err)
	}
}

func TestDailyLimitCheckedBeforeCap(t *testing.T) {
	fx := newFixture(t, Params{Cap: tokens(50), MaxMintPerTx: tokens(100), MaxDailyMint: tokens(80)})
	if err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(50)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// 50 more violates both the daily budget (80) and the cap (50); the
	// daily check fires first.
	err := fx.ledger.Mint(minterAddr, aliceAddr, tokens(50))
	var dailyErr *DailyLimitError
	if !errors.As(err, &dailyErr) {
		t.Fatalf("expected daily limit error, got %v", err)
	}
}
