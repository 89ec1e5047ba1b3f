package token

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrPaused is returned when a pause-gated operation runs while the
	// ledger is paused.
	ErrPaused = errors.New("token: paused")
	// ErrNotPaused is returned when Unpause runs against an unpaused ledger.
	ErrNotPaused = errors.New("token: not paused")
	// ErrZeroAddress rejects the zero account where a real party is required.
	ErrZeroAddress = errors.New("token: zero address")
	// ErrAdminRenounceDisabled blocks admins from renouncing the admin role.
	ErrAdminRenounceDisabled = errors.New("token: admin role cannot be renounced")
	// ErrPermitExpired is returned when a permit deadline has passed.
	ErrPermitExpired = errors.New("token: permit expired")
	// ErrPermitSignature is returned when permit signature recovery does not
	// yield the stated owner, including replayed permits whose nonce moved on.
	ErrPermitSignature = errors.New("token: permit signature mismatch")
)

// MintLimitError reports a single mint exceeding the per-transaction ceiling.
type MintLimitError struct {
	Attempted *big.Int
	Limit     *big.Int
}

func (e *MintLimitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("token: mint of %s exceeds per-transaction limit %s", e.Attempted, e.Limit)
}

// DailyLimitError reports a mint that would push the current UTC day's total
// past the daily ceiling.
type DailyLimitError struct {
	Day       uint64
	Attempted *big.Int
	Limit     *big.Int
}

func (e *DailyLimitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("token: day %d mint total %s exceeds daily limit %s", e.Day, e.Attempted, e.Limit)
}

// CapError reports a mint that would push total supply past the hard cap.
type CapError struct {
	Attempted *big.Int
	Cap       *big.Int
}

func (e *CapError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("token: supply %s would exceed cap %s", e.Attempted, e.Cap)
}

// InsufficientBalanceError reports a debit larger than the account balance.
type InsufficientBalanceError struct {
	Addr [20]byte
	Have *big.Int
	Need *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("token: balance %s below required %s", e.Have, e.Need)
}

// InsufficientAllowanceError reports a spend larger than the approved amount.
type InsufficientAllowanceError struct {
	Owner   [20]byte
	Spender [20]byte
	Have    *big.Int
	Need    *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("token: allowance %s below required %s", e.Have, e.Need)
}
