package token

import (
	"fmt"
	"math/big"
	"time"

	"sathu/core/events"
	"sathu/native/common"
)

const (
	// Name is the human-readable token name.
	Name = "SaThuCoin"
	// Symbol is the ticker.
	Symbol = "SATHU"
	// Version tags the permit signing domain.
	Version = "1"
	// Decimals is the fixed display precision.
	Decimals = 18
)

var (
	oneToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

	defaultCap          = new(big.Int).Mul(big.NewInt(1_000_000_000), oneToken)
	defaultMaxMintPerTx = new(big.Int).Mul(big.NewInt(10_000), oneToken)
	defaultMaxDailyMint = new(big.Int).Mul(big.NewInt(500_000), oneToken)
)

// Params carries the supply ceilings. Zero-value fields fall back to the
// production defaults, so deployments only override what they need.
type Params struct {
	Cap          *big.Int
	MaxMintPerTx *big.Int
	MaxDailyMint *big.Int
}

func (p Params) normalised() Params {
	out := p
	if out.Cap == nil || out.Cap.Sign() <= 0 {
		out.Cap = new(big.Int).Set(defaultCap)
	}
	if out.MaxMintPerTx == nil || out.MaxMintPerTx.Sign() <= 0 {
		out.MaxMintPerTx = new(big.Int).Set(defaultMaxMintPerTx)
	}
	if out.MaxDailyMint == nil || out.MaxDailyMint.Sign() <= 0 {
		out.MaxDailyMint = new(big.Int).Set(defaultMaxDailyMint)
	}
	return out
}

// Config seeds a fresh ledger. Admin receives the admin and pauser roles,
// Minter receives the minter role.
type Config struct {
	Admin   [20]byte
	Minter  [20]byte
	ChainID uint64
	Params  Params
}

// Ledger is the fungible token state machine. All mutating operations take
// the caller explicitly and validate every precondition before touching
// state, so a returned error always means nothing changed.
type Ledger struct {
	store   common.Storage
	emitter events.Emitter
	clock   func() time.Time
	chainID uint64
	params  Params
	roles   *common.Registry
	pause   *common.PauseLatch
	limiter *mintLimiter
}

// NewLedger opens the ledger over the store, seeding genesis roles the first
// time it runs against an empty namespace.
func NewLedger(store common.Storage, emitter events.Emitter, cfg Config) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("token: nil store")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if cfg.Admin == ([20]byte{}) {
		return nil, fmt.Errorf("token: admin: %w", ErrZeroAddress)
	}
	if cfg.Minter == ([20]byte{}) {
		return nil, fmt.Errorf("token: minter: %w", ErrZeroAddress)
	}
	params := cfg.Params.normalised()
	l := &Ledger{
		store:   store,
		emitter: emitter,
		clock:   time.Now,
		chainID: cfg.ChainID,
		params:  params,
		roles:   common.NewRegistry(store, namespace),
		pause:   common.NewPauseLatch(store, namespace),
		limiter: newMintLimiter(store, params.MaxMintPerTx, params.MaxDailyMint),
	}
	var seeded bool
	ok, err := store.KVGet(genesisKey(), &seeded)
	if err != nil {
		return nil, fmt.Errorf("token: read genesis flag: %w", err)
	}
	if !ok || !seeded {
		for _, grant := range []struct {
			role common.Role
			addr [20]byte
		}{
			{common.RoleAdmin, cfg.Admin},
			{common.RolePauser, cfg.Admin},
			{common.RoleMinter, cfg.Minter},
		} {
			if _, err := l.roles.Grant(grant.role, grant.addr); err != nil {
				return nil, fmt.Errorf("token: seed role %s: %w", grant.role, err)
			}
		}
		if err := store.KVPut(genesisKey(), true); err != nil {
			return nil, fmt.Errorf("token: write genesis flag: %w", err)
		}
	}
	return l, nil
}

// SetClock overrides the time source. Intended for tests.
func (l *Ledger) SetClock(clock func() time.Time) {
	if clock != nil {
		l.clock = clock
	}
}

// Fork returns a ledger view over another store and emitter, sharing the
// parameters, chain id, and clock. Callers use it to run operations against a
// speculative overlay before committing.
func (l *Ledger) Fork(store common.Storage, emitter events.Emitter) *Ledger {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Ledger{
		store:   store,
		emitter: emitter,
		clock:   l.clock,
		chainID: l.chainID,
		params:  l.params,
		roles:   l.roles.WithStore(store),
		pause:   l.pause.WithStore(store),
		limiter: l.limiter.withStore(store),
	}
}

func checkAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("token: negative amount %s", amount)
	}
	return amount, nil
}

func (l *Ledger) readAmount(key []byte) (*big.Int, error) {
	var raw []byte
	ok, err := l.store.KVGet(key, &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(raw), nil
}

func (l *Ledger) writeAmount(key []byte, amount *big.Int) error {
	return l.store.KVPut(key, amount.Bytes())
}

func (l *Ledger) requireUnpaused() error {
	paused, err := l.pause.Paused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

// Mint creates amount for to. The caller must hold the minter role and the
// amount must clear the per-transaction limit, the daily limit, and the cap,
// in that order.
func (l *Ledger) Mint(caller, to [20]byte, amount *big.Int) error {
	return l.mint(caller, to, amount, false, "")
}

// MintForDeed mints like Mint and additionally records the deed description
// in the emitted event stream. The deed text may be empty; the event is
// emitted either way.
func (l *Ledger) MintForDeed(caller, to [20]byte, amount *big.Int, deed string) error {
	return l.mint(caller, to, amount, true, deed)
}

func (l *Ledger) mint(caller, to [20]byte, amount *big.Int, hasDeed bool, deed string) error {
	if err := l.roles.Require(caller, common.RoleMinter); err != nil {
		return err
	}
	if err := l.requireUnpaused(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	now := l.clock()
	if err := l.limiter.check(now, amount); err != nil {
		return err
	}
	supply, err := l.readAmount(supplyKey())
	if err != nil {
		return err
	}
	newSupply := new(big.Int).Add(supply, amount)
	if newSupply.Cmp(l.params.Cap) > 0 {
		return &CapError{Attempted: newSupply, Cap: new(big.Int).Set(l.params.Cap)}
	}
	balance, err := l.readAmount(balanceKey(to))
	if err != nil {
		return err
	}
	if err := l.limiter.record(now, amount); err != nil {
		return err
	}
	if err := l.writeAmount(supplyKey(), newSupply); err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(to), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	l.emitter.Emit(events.Transfer{From: [20]byte{}, To: to, Amount: amount})
	if hasDeed {
		l.emitter.Emit(events.DeedRewarded{Recipient: to, Amount: amount, Deed: deed})
	}
	return nil
}

// Transfer moves amount from the caller to to.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if err := l.requireUnpaused(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	l.emitter.Emit(events.Transfer{From: from, To: to, Amount: amount})
	return nil
}

// move debits from and credits to, reading each balance fresh so a transfer
// to self nets out to no change.
func (l *Ledger) move(from, to [20]byte, amount *big.Int) error {
	fromBalance, err := l.readAmount(balanceKey(from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Addr: from, Have: fromBalance, Need: new(big.Int).Set(amount)}
	}
	if err := l.writeAmount(balanceKey(from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := l.readAmount(balanceKey(to))
	if err != nil {
		return err
	}
	return l.writeAmount(balanceKey(to), new(big.Int).Add(toBalance, amount))
}

// Approve sets the spender's allowance over the owner's balance to amount,
// replacing any previous value. Approvals work while paused.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	if spender == ([20]byte{}) {
		return ErrZeroAddress
	}
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if err := l.writeAmount(allowanceKey(owner, spender), amount); err != nil {
		return err
	}
	l.emitter.Emit(events.Approval{Owner: owner, Spender: spender, Amount: amount})
	return nil
}

func (l *Ledger) spendAllowance(owner, spender [20]byte, amount *big.Int) error {
	allowance, err := l.readAmount(allowanceKey(owner, spender))
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return &InsufficientAllowanceError{Owner: owner, Spender: spender, Have: allowance, Need: new(big.Int).Set(amount)}
	}
	// The reduced allowance is an internal consumption, not a fresh
	// approval, so no Approval event accompanies it.
	return l.writeAmount(allowanceKey(owner, spender), new(big.Int).Sub(allowance, amount))
}

// TransferFrom moves amount from owner to to on the strength of spender's
// allowance.
func (l *Ledger) TransferFrom(spender, owner, to [20]byte, amount *big.Int) error {
	if err := l.requireUnpaused(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if err := l.spendAllowance(owner, spender, amount); err != nil {
		return err
	}
	if err := l.move(owner, to, amount); err != nil {
		return err
	}
	l.emitter.Emit(events.Transfer{From: owner, To: to, Amount: amount})
	return nil
}

// Burn destroys amount from the caller's balance, reducing total supply.
// Burned amounts never refund the daily mint bucket.
func (l *Ledger) Burn(from [20]byte, amount *big.Int) error {
	if err := l.requireUnpaused(); err != nil {
		return err
	}
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	return l.burn(from, amount)
}

// BurnFrom destroys amount from owner's balance on the strength of spender's
// allowance.
func (l *Ledger) BurnFrom(spender, owner [20]byte, amount *big.Int) error {
	if err := l.requireUnpaused(); err != nil {
		return err
	}
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if err := l.spendAllowance(owner, spender, amount); err != nil {
		return err
	}
	return l.burn(owner, amount)
}

func (l *Ledger) burn(from [20]byte, amount *big.Int) error {
	balance, err := l.readAmount(balanceKey(from))
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Addr: from, Have: balance, Need: new(big.Int).Set(amount)}
	}
	supply, err := l.readAmount(supplyKey())
	if err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(from), new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	if err := l.writeAmount(supplyKey(), new(big.Int).Sub(supply, amount)); err != nil {
		return err
	}
	l.emitter.Emit(events.Transfer{From: from, To: [20]byte{}, Amount: amount})
	return nil
}

// Pause halts transfers, mints, and burns. Approvals and permits keep
// working. The caller must hold the pauser role.
func (l *Ledger) Pause(caller [20]byte) error {
	if err := l.roles.Require(caller, common.RolePauser); err != nil {
		return err
	}
	paused, err := l.pause.Paused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	if err := l.pause.SetPaused(true); err != nil {
		return err
	}
	l.emitter.Emit(events.Paused{Account: caller})
	return nil
}

// Unpause lifts the pause. The caller must hold the pauser role.
func (l *Ledger) Unpause(caller [20]byte) error {
	if err := l.roles.Require(caller, common.RolePauser); err != nil {
		return err
	}
	paused, err := l.pause.Paused()
	if err != nil {
		return err
	}
	if !paused {
		return ErrNotPaused
	}
	if err := l.pause.SetPaused(false); err != nil {
		return err
	}
	l.emitter.Emit(events.Unpaused{Account: caller})
	return nil
}

// GrantRole gives account the role. The caller must hold the admin role.
// Granting a role the account already holds changes nothing and emits no
// event.
func (l *Ledger) GrantRole(caller [20]byte, role common.Role, account [20]byte) error {
	if err := l.roles.Require(caller, common.RoleAdmin); err != nil {
		return err
	}
	granted, err := l.roles.Grant(role, account)
	if err != nil {
		return err
	}
	if granted {
		l.emitter.Emit(events.RoleGranted{Module: namespace, Role: string(role), Account: account, Sender: caller})
	}
	return nil
}

// RevokeRole removes the role from account. The caller must hold the admin
// role. Admins may revoke their own admin role this way, unlike RenounceRole.
func (l *Ledger) RevokeRole(caller [20]byte, role common.Role, account [20]byte) error {
	if err := l.roles.Require(caller, common.RoleAdmin); err != nil {
		return err
	}
	revoked, err := l.roles.Revoke(role, account)
	if err != nil {
		return err
	}
	if revoked {
		l.emitter.Emit(events.RoleRevoked{Module: namespace, Role: string(role), Account: account, Sender: caller})
	}
	return nil
}

// RenounceRole lets the caller drop one of its own roles. The admin role is
// exempt and can only leave an account through RevokeRole.
func (l *Ledger) RenounceRole(caller [20]byte, role common.Role) error {
	if role == common.RoleAdmin {
		return ErrAdminRenounceDisabled
	}
	revoked, err := l.roles.Revoke(role, caller)
	if err != nil {
		return err
	}
	if revoked {
		l.emitter.Emit(events.RoleRevoked{Module: namespace, Role: string(role), Account: caller, Sender: caller})
	}
	return nil
}

// Permit consumes a signed approval: deadline first, then signature recovery
// against the owner's current nonce. On success the allowance is set and the
// nonce advances so the signature cannot be replayed. Permits work while
// paused.
func (l *Ledger) Permit(owner, spender [20]byte, value *big.Int, deadline uint64, sig []byte) error {
	if owner == ([20]byte{}) || spender == ([20]byte{}) {
		return ErrZeroAddress
	}
	value, err := checkAmount(value)
	if err != nil {
		return err
	}
	nonce, err := l.Nonces(owner)
	if err != nil {
		return err
	}
	p := Permit{Owner: owner, Spender: spender, Value: value, Nonce: nonce, Deadline: deadline}
	if err := verifyPermit(p, sig, l.chainID, l.clock()); err != nil {
		return err
	}
	if err := l.store.KVPut(nonceKey(owner), nonce+1); err != nil {
		return err
	}
	if err := l.writeAmount(allowanceKey(owner, spender), value); err != nil {
		return err
	}
	l.emitter.Emit(events.Approval{Owner: owner, Spender: spender, Amount: value})
	return nil
}

// BalanceOf returns the account balance, zero for unknown accounts.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	return l.readAmount(balanceKey(addr))
}

// TotalSupply returns the outstanding supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.readAmount(supplyKey())
}

// Allowance returns what spender may still move from owner.
func (l *Ledger) Allowance(owner, spender [20]byte) (*big.Int, error) {
	return l.readAmount(allowanceKey(owner, spender))
}

// Nonces returns the owner's next permit nonce.
func (l *Ledger) Nonces(owner [20]byte) (uint64, error) {
	var nonce uint64
	ok, err := l.store.KVGet(nonceKey(owner), &nonce)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return nonce, nil
}

// Paused reports the pause flag.
func (l *Ledger) Paused() (bool, error) {
	return l.pause.Paused()
}

// HasRole reports whether the account holds the role.
func (l *Ledger) HasRole(role common.Role, addr [20]byte) bool {
	return l.roles.Has(role, addr)
}

// Cap returns the supply ceiling.
func (l *Ledger) Cap() *big.Int {
	return new(big.Int).Set(l.params.Cap)
}

// MaxMintPerTx returns the per-transaction mint ceiling.
func (l *Ledger) MaxMintPerTx() *big.Int {
	return new(big.Int).Set(l.params.MaxMintPerTx)
}

// MaxDailyMint returns the rolling-day mint ceiling.
func (l *Ledger) MaxDailyMint() *big.Int {
	return new(big.Int).Set(l.params.MaxDailyMint)
}

// DailyMintedToday returns the running total minted in the current UTC day.
func (l *Ledger) DailyMintedToday() (*big.Int, error) {
	return l.limiter.mintedOn(dayKey(l.clock()))
}

// ChainID returns the id the permit domain is bound to.
func (l *Ledger) ChainID() uint64 {
	return l.chainID
}

// DomainSeparator returns this ledger's permit domain hash.
func (l *Ledger) DomainSeparator() []byte {
	return DomainSeparator(l.chainID)
}
