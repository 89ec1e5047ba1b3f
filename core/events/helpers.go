package events

import (
	"math/big"

	"sathu/crypto"
)

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func addressString(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.SathuPrefix, addr[:]).String()
}
