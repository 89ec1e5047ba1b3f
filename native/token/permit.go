package token

import (
	"fmt"
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"sathu/crypto"
)

const permitDomainPrefix = "SATHU_PERMIT_V1"

// Permit is a signed approval: the owner authorises the spender for value
// until deadline, bound to the owner's current permit nonce and the chain id.
type Permit struct {
	Owner    [20]byte
	Spender  [20]byte
	Value    *big.Int
	Nonce    uint64
	Deadline uint64
}

// CanonicalMessage renders the byte string owners sign. Every field is pinned
// so a signature cannot be replayed across chains, spenders, or nonces.
func (p Permit) CanonicalMessage(chainID uint64) []byte {
	owner := crypto.MustNewAddress(crypto.SathuPrefix, p.Owner[:]).String()
	spender := crypto.MustNewAddress(crypto.SathuPrefix, p.Spender[:]).String()
	value := big.NewInt(0)
	if p.Value != nil {
		value = p.Value
	}
	msg := fmt.Sprintf("%s|name=%s|version=%s|chain=%d|owner=%s|spender=%s|value=%s|nonce=%d|deadline=%d",
		permitDomainPrefix, Name, Version, chainID, owner, spender, value.String(), p.Nonce, p.Deadline)
	return []byte(msg)
}

// Hash returns the keccak digest of the canonical message.
func (p Permit) Hash(chainID uint64) []byte {
	return ethcrypto.Keccak256(p.CanonicalMessage(chainID))
}

// SignPermit produces a recoverable signature over the permit digest.
func SignPermit(key *crypto.PrivateKey, p Permit, chainID uint64) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("token: nil signing key")
	}
	return key.Sign(p.Hash(chainID))
}

// DomainSeparator identifies this ledger's permit domain.
func DomainSeparator(chainID uint64) []byte {
	return ethcrypto.Keccak256([]byte(fmt.Sprintf("%s|name=%s|version=%s|chain=%d",
		permitDomainPrefix, Name, Version, chainID)))
}

// verifyPermit checks the deadline first, then recovers the signer from the
// digest and compares it to the stated owner. A permit whose recorded nonce
// has already advanced recovers to a different digest and fails the signer
// comparison, which is how replays surface.
func verifyPermit(p Permit, sig []byte, chainID uint64, now time.Time) error {
	if p.Deadline < uint64(now.Unix()) {
		return ErrPermitExpired
	}
	pub, err := ethcrypto.SigToPub(p.Hash(chainID), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermitSignature, err)
	}
	recovered := [20]byte(ethcrypto.PubkeyToAddress(*pub))
	if recovered != p.Owner {
		return ErrPermitSignature
	}
	return nil
}
