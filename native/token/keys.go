package token

import (
	"encoding/hex"
	"fmt"
)

const namespace = "token"

func balanceKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s/balance/%s", namespace, hex.EncodeToString(addr[:])))
}

func allowanceKey(owner, spender [20]byte) []byte {
	return []byte(fmt.Sprintf("%s/allowance/%s/%s", namespace, hex.EncodeToString(owner[:]), hex.EncodeToString(spender[:])))
}

func nonceKey(owner [20]byte) []byte {
	return []byte(fmt.Sprintf("%s/nonce/%s", namespace, hex.EncodeToString(owner[:])))
}

func supplyKey() []byte {
	return []byte(fmt.Sprintf("%s/supply", namespace))
}

func mintedDayKey(day uint64) []byte {
	return []byte(fmt.Sprintf("%s/minted/day/%d", namespace, day))
}

func genesisKey() []byte {
	return []byte(fmt.Sprintf("%s/genesis", namespace))
}
