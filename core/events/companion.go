package events

import (
	"encoding/hex"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"sathu/core/types"
)

const (
	// TypeDeedRecorded is the companion's tag-enriched mint record. The
	// sourceId and categoryId attributes carry keccak256 digests of the
	// cleartext tags so indexers can filter without knowing the strings.
	TypeDeedRecorded = "companion.deed_recorded"
	// TypeOfferingMade accompanies companion-mediated burns.
	TypeOfferingMade = "companion.offering_made"
	// TypeCompanionPaused and TypeCompanionUnpaused reflect the companion's
	// own pause flag, which is independent of the ledger's.
	TypeCompanionPaused   = "companion.paused"
	TypeCompanionUnpaused = "companion.unpaused"
)

// DeedRecorded captures a tagged mint performed through the companion.
type DeedRecorded struct {
	Recipient [20]byte
	Amount    *big.Int
	Deed      string
	Source    string
	Category  string
}

func (DeedRecorded) EventType() string { return TypeDeedRecorded }

func (e DeedRecorded) Event() *types.Event {
	return &types.Event{
		Type: TypeDeedRecorded,
		Attributes: map[string]string{
			"recipient":  addressString(e.Recipient),
			"sourceId":   tagID(e.Source),
			"categoryId": tagID(e.Category),
			"amount":     formatAmount(e.Amount),
			"deed":       e.Deed,
			"source":     e.Source,
			"category":   e.Category,
		},
	}
}

// OfferingMade records the free-text offering attached to a burn.
type OfferingMade struct {
	Offerer  [20]byte
	Amount   *big.Int
	Offering string
}

func (OfferingMade) EventType() string { return TypeOfferingMade }

func (e OfferingMade) Event() *types.Event {
	return &types.Event{
		Type: TypeOfferingMade,
		Attributes: map[string]string{
			"offerer":  addressString(e.Offerer),
			"amount":   formatAmount(e.Amount),
			"offering": e.Offering,
		},
	}
}

// CompanionPaused marks the companion entering the paused state.
type CompanionPaused struct {
	Account [20]byte
}

func (CompanionPaused) EventType() string { return TypeCompanionPaused }

func (e CompanionPaused) Event() *types.Event {
	return &types.Event{
		Type:       TypeCompanionPaused,
		Attributes: map[string]string{"account": addressString(e.Account)},
	}
}

// CompanionUnpaused marks the companion leaving the paused state.
type CompanionUnpaused struct {
	Account [20]byte
}

func (CompanionUnpaused) EventType() string { return TypeCompanionUnpaused }

func (e CompanionUnpaused) Event() *types.Event {
	return &types.Event{
		Type:       TypeCompanionUnpaused,
		Attributes: map[string]string{"account": addressString(e.Account)},
	}
}

// TagID renders the indexable keccak256 digest of a cleartext tag.
func TagID(tag string) string { return tagID(tag) }

func tagID(tag string) string {
	return "0x" + hex.EncodeToString(ethcrypto.Keccak256([]byte(tag)))
}
