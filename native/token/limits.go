package token

import (
	"fmt"
	"math/big"
	"time"

	"sathu/native/common"
)

const secondsPerDay = 86400

// dayKey buckets a timestamp into its UTC day number.
func dayKey(now time.Time) uint64 {
	unix := now.Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix) / secondsPerDay
}

// mintLimiter enforces the per-transaction and rolling-day mint ceilings.
// Daily totals live in per-day buckets, so a new day starts from zero without
// any explicit reset.
type mintLimiter struct {
	store     common.Storage
	maxPerTx  *big.Int
	maxPerDay *big.Int
}

func newMintLimiter(store common.Storage, maxPerTx, maxPerDay *big.Int) *mintLimiter {
	return &mintLimiter{store: store, maxPerTx: maxPerTx, maxPerDay: maxPerDay}
}

func (l *mintLimiter) withStore(store common.Storage) *mintLimiter {
	return &mintLimiter{store: store, maxPerTx: l.maxPerTx, maxPerDay: l.maxPerDay}
}

func (l *mintLimiter) mintedOn(day uint64) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, fmt.Errorf("token: mint limiter not initialised")
	}
	var raw []byte
	ok, err := l.store.KVGet(mintedDayKey(day), &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(raw), nil
}

// check validates the amount against both ceilings without recording it.
func (l *mintLimiter) check(now time.Time, amount *big.Int) error {
	if amount.Cmp(l.maxPerTx) > 0 {
		return &MintLimitError{Attempted: new(big.Int).Set(amount), Limit: new(big.Int).Set(l.maxPerTx)}
	}
	day := dayKey(now)
	minted, err := l.mintedOn(day)
	if err != nil {
		return err
	}
	total := new(big.Int).Add(minted, amount)
	if total.Cmp(l.maxPerDay) > 0 {
		return &DailyLimitError{Day: day, Attempted: total, Limit: new(big.Int).Set(l.maxPerDay)}
	}
	return nil
}

// record credits the amount to the current day's bucket. Callers must have
// passed check first.
func (l *mintLimiter) record(now time.Time, amount *big.Int) error {
	day := dayKey(now)
	minted, err := l.mintedOn(day)
	if err != nil {
		return err
	}
	total := new(big.Int).Add(minted, amount)
	return l.store.KVPut(mintedDayKey(day), total.Bytes())
}
