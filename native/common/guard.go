package common

import "fmt"

// PauseLatch persists a single pause flag for a module namespace. Modules
// gate their mutating paths on the latch and expose it through their own
// sentinel errors.
type PauseLatch struct {
	store Storage
	key   []byte
}

// NewPauseLatch binds the latch to the flag stored under the namespace.
func NewPauseLatch(store Storage, namespace string) *PauseLatch {
	return &PauseLatch{store: store, key: []byte(fmt.Sprintf("%s/paused", namespace))}
}

// WithStore rebinds the latch to another storage backend, preserving the key.
func (p *PauseLatch) WithStore(store Storage) *PauseLatch {
	if p == nil {
		return nil
	}
	return &PauseLatch{store: store, key: append([]byte(nil), p.key...)}
}

// Paused reports the current flag. Missing state means not paused.
func (p *PauseLatch) Paused() (bool, error) {
	if p == nil || p.store == nil {
		return false, fmt.Errorf("pause latch not initialised")
	}
	var paused bool
	ok, err := p.store.KVGet(p.key, &paused)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return paused, nil
}

// SetPaused writes the flag unconditionally.
func (p *PauseLatch) SetPaused(paused bool) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("pause latch not initialised")
	}
	return p.store.KVPut(p.key, paused)
}
