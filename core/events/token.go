package events

import (
	"math/big"

	"sathu/core/types"
)

const (
	// TypeTransfer is emitted for every balance movement, including mints
	// (from the zero address) and burns (to the zero address).
	TypeTransfer = "token.transfer"
	// TypeApproval is emitted when an allowance is set, whether via approve
	// or via a consumed permit.
	TypeApproval = "token.approval"
	// TypeDeedRewarded accompanies deed-attributed mints.
	TypeDeedRewarded = "token.deed_rewarded"
	// TypePaused and TypeUnpaused reflect the ledger pause flag.
	TypePaused   = "token.paused"
	TypeUnpaused = "token.unpaused"
)

// Transfer captures a balance movement between two accounts.
type Transfer struct {
	From   [20]byte
	To     [20]byte
	Amount *big.Int
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	return &types.Event{
		Type: TypeTransfer,
		Attributes: map[string]string{
			"from":   addressString(e.From),
			"to":     addressString(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}

// Approval captures an allowance assignment.
type Approval struct {
	Owner   [20]byte
	Spender [20]byte
	Amount  *big.Int
}

func (Approval) EventType() string { return TypeApproval }

func (e Approval) Event() *types.Event {
	return &types.Event{
		Type: TypeApproval,
		Attributes: map[string]string{
			"owner":   addressString(e.Owner),
			"spender": addressString(e.Spender),
			"amount":  formatAmount(e.Amount),
		},
	}
}

// DeedRewarded records the free-text deed attached to a mint. The text is
// audit metadata only; it never enters ledger state.
type DeedRewarded struct {
	Recipient [20]byte
	Amount    *big.Int
	Deed      string
}

func (DeedRewarded) EventType() string { return TypeDeedRewarded }

func (e DeedRewarded) Event() *types.Event {
	return &types.Event{
		Type: TypeDeedRewarded,
		Attributes: map[string]string{
			"recipient": addressString(e.Recipient),
			"amount":    formatAmount(e.Amount),
			"deed":      e.Deed,
		},
	}
}

// Paused marks the ledger entering the paused state.
type Paused struct {
	Account [20]byte
}

func (Paused) EventType() string { return TypePaused }

func (e Paused) Event() *types.Event {
	return &types.Event{
		Type:       TypePaused,
		Attributes: map[string]string{"account": addressString(e.Account)},
	}
}

// Unpaused marks the ledger leaving the paused state.
type Unpaused struct {
	Account [20]byte
}

func (Unpaused) EventType() string { return TypeUnpaused }

func (e Unpaused) Event() *types.Event {
	return &types.Event{
		Type:       TypeUnpaused,
		Attributes: map[string]string{"account": addressString(e.Account)},
	}
}
