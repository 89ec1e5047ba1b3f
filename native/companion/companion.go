// Package companion implements the mint and burn orchestrator that fronts
// the token ledger. It holds the ledger's minter role itself and exposes
// tagged mints and offering burns under its own role and pause regime.
package companion

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"sathu/core/events"
	"sathu/core/state"
	"sathu/native/common"
	"sathu/native/token"
)

const namespace = "companion"

var (
	// ErrPaused gates every companion operation while the companion itself
	// is paused. The ledger's own pause flag is checked separately by the
	// delegated ledger call.
	ErrPaused = errors.New("companion: paused")
	// ErrNotPaused is returned when Unpause runs against an unpaused
	// companion.
	ErrNotPaused = errors.New("companion: not paused")
	// ErrZeroAddress rejects the zero account where a real party is required.
	ErrZeroAddress = errors.New("companion: zero address")
	// ErrAdminRenounceDisabled blocks admins from renouncing the admin role.
	ErrAdminRenounceDisabled = errors.New("companion: admin role cannot be renounced")
)

// Config seeds a fresh companion. Self is the account the companion acts as
// when calling the ledger; it must hold the ledger's minter role for tagged
// mints to succeed, and token holders approve it before offering burns.
type Config struct {
	Self   [20]byte
	Admin  [20]byte
	Minter [20]byte
}

// Companion orchestrates mints and burns against the ledger. Burn flows that
// involve a permit run on a state overlay so a failure in the second phase
// rolls the first phase back completely.
type Companion struct {
	ledger  *token.Ledger
	st      *state.Manager
	emitter events.Emitter
	log     *slog.Logger
	self    [20]byte
	roles   *common.Registry
	pause   *common.PauseLatch
}

// New opens the companion over the same state manager as the ledger, seeding
// genesis roles the first time it runs against an empty namespace.
func New(ledger *token.Ledger, st *state.Manager, emitter events.Emitter, cfg Config) (*Companion, error) {
	if ledger == nil {
		return nil, fmt.Errorf("companion: nil ledger")
	}
	if st == nil {
		return nil, fmt.Errorf("companion: nil state manager")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if cfg.Self == ([20]byte{}) {
		return nil, fmt.Errorf("companion: self: %w", ErrZeroAddress)
	}
	if cfg.Admin == ([20]byte{}) {
		return nil, fmt.Errorf("companion: admin: %w", ErrZeroAddress)
	}
	if cfg.Minter == ([20]byte{}) {
		return nil, fmt.Errorf("companion: minter: %w", ErrZeroAddress)
	}
	c := &Companion{
		ledger:  ledger,
		st:      st,
		emitter: emitter,
		log:     slog.Default(),
		self:    cfg.Self,
		roles:   common.NewRegistry(st, namespace),
		pause:   common.NewPauseLatch(st, namespace),
	}
	var seeded bool
	ok, err := st.KVGet(genesisKey(), &seeded)
	if err != nil {
		return nil, fmt.Errorf("companion: read genesis flag: %w", err)
	}
	if !ok || !seeded {
		if _, err := c.roles.Grant(common.RoleAdmin, cfg.Admin); err != nil {
			return nil, fmt.Errorf("companion: seed admin role: %w", err)
		}
		if _, err := c.roles.Grant(common.RoleMinter, cfg.Minter); err != nil {
			return nil, fmt.Errorf("companion: seed minter role: %w", err)
		}
		if err := st.KVPut(genesisKey(), true); err != nil {
			return nil, fmt.Errorf("companion: write genesis flag: %w", err)
		}
	}
	return c, nil
}

func genesisKey() []byte {
	return []byte(fmt.Sprintf("%s/genesis", namespace))
}

func (c *Companion) requireUnpaused() error {
	paused, err := c.pause.Paused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

// MintForDeedTagged mints to recipient through the ledger with the
// companion's own minter gate, recording the deed alongside indexable source
// and category tags. The ledger sees the companion as the minting caller, so
// every ledger limit still applies.
func (c *Companion) MintForDeedTagged(caller, to [20]byte, amount *big.Int, deed, source, category string) error {
	if err := c.roles.Require(caller, common.RoleMinter); err != nil {
		return err
	}
	if err := c.requireUnpaused(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	if err := c.ledger.MintForDeed(c.self, to, amount, deed); err != nil {
		return err
	}
	c.emitter.Emit(events.DeedRecorded{
		Recipient: to,
		Amount:    amount,
		Deed:      deed,
		Source:    source,
		Category:  category,
	})
	return nil
}

// BurnWithOffering burns amount from the caller's balance via the caller's
// standing allowance for the companion, recording the offering text.
func (c *Companion) BurnWithOffering(caller [20]byte, amount *big.Int, offering string) error {
	if err := c.requireUnpaused(); err != nil {
		return err
	}
	if err := c.ledger.BurnFrom(c.self, caller, amount); err != nil {
		return err
	}
	c.emitter.Emit(events.OfferingMade{Offerer: caller, Amount: amount, Offering: offering})
	return nil
}

// BurnWithOfferingPermit combines a permit granting the companion an
// allowance with the offering burn, atomically. Both phases run against a
// state overlay: a permit failure is absorbed (the caller may already hold a
// sufficient allowance, or a relayer may have consumed the permit moments
// earlier), but a burn failure discards the overlay so even a successfully
// consumed permit leaves no trace.
func (c *Companion) BurnWithOfferingPermit(caller [20]byte, amount *big.Int, offering string, deadline uint64, sig []byte) error {
	if err := c.requireUnpaused(); err != nil {
		return err
	}
	overlay := state.NewOverlay(c.st)
	buffer := events.NewBuffer(c.emitter)
	scratch := c.ledger.Fork(overlay, buffer)
	// The permit outcome is a value, not a control-flow exit: a standing
	// allowance or a relayer-consumed permit can still carry the burn.
	if permitErr := scratch.Permit(caller, c.self, amount, deadline, sig); permitErr != nil {
		c.log.Debug("offering permit not consumed", "error", permitErr)
	}
	if err := scratch.BurnFrom(c.self, caller, amount); err != nil {
		return err
	}
	if err := overlay.Commit(); err != nil {
		return err
	}
	buffer.Flush()
	c.emitter.Emit(events.OfferingMade{Offerer: caller, Amount: amount, Offering: offering})
	return nil
}

// Pause halts companion operations. Only admins may pause; the companion has
// no separate pauser role.
func (c *Companion) Pause(caller [20]byte) error {
	if err := c.roles.Require(caller, common.RoleAdmin); err != nil {
		return err
	}
	paused, err := c.pause.Paused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	if err := c.pause.SetPaused(true); err != nil {
		return err
	}
	c.emitter.Emit(events.CompanionPaused{Account: caller})
	return nil
}

// Unpause lifts the companion pause. Admin gated like Pause.
func (c *Companion) Unpause(caller [20]byte) error {
	if err := c.roles.Require(caller, common.RoleAdmin); err != nil {
		return err
	}
	paused, err := c.pause.Paused()
	if err != nil {
		return err
	}
	if !paused {
		return ErrNotPaused
	}
	if err := c.pause.SetPaused(false); err != nil {
		return err
	}
	c.emitter.Emit(events.CompanionUnpaused{Account: caller})
	return nil
}

// GrantRole gives account the companion role. Admin gated and idempotent.
func (c *Companion) GrantRole(caller [20]byte, role common.Role, account [20]byte) error {
	if err := c.roles.Require(caller, common.RoleAdmin); err != nil {
		return err
	}
	granted, err := c.roles.Grant(role, account)
	if err != nil {
		return err
	}
	if granted {
		c.emitter.Emit(events.RoleGranted{Module: namespace, Role: string(role), Account: account, Sender: caller})
	}
	return nil
}

// RevokeRole removes the companion role from account. Admin gated; admins
// may revoke their own admin role this way.
func (c *Companion) RevokeRole(caller [20]byte, role common.Role, account [20]byte) error {
	if err := c.roles.Require(caller, common.RoleAdmin); err != nil {
		return err
	}
	revoked, err := c.roles.Revoke(role, account)
	if err != nil {
		return err
	}
	if revoked {
		c.emitter.Emit(events.RoleRevoked{Module: namespace, Role: string(role), Account: account, Sender: caller})
	}
	return nil
}

// RenounceRole lets the caller drop one of its own companion roles, except
// the admin role.
func (c *Companion) RenounceRole(caller [20]byte, role common.Role) error {
	if role == common.RoleAdmin {
		return ErrAdminRenounceDisabled
	}
	revoked, err := c.roles.Revoke(role, caller)
	if err != nil {
		return err
	}
	if revoked {
		c.emitter.Emit(events.RoleRevoked{Module: namespace, Role: string(role), Account: caller, Sender: caller})
	}
	return nil
}

// HasRole reports whether the account holds the companion role.
func (c *Companion) HasRole(role common.Role, addr [20]byte) bool {
	return c.roles.Has(role, addr)
}

// Paused reports the companion's own pause flag.
func (c *Companion) Paused() (bool, error) {
	return c.pause.Paused()
}

// Self returns the account the companion acts as against the ledger.
func (c *Companion) Self() [20]byte {
	return c.self
}

// Ledger exposes the underlying token ledger.
func (c *Companion) Ledger() *token.Ledger {
	return c.ledger
}
