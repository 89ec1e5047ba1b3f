package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

type rawStore interface {
	rawGet(key []byte) ([]byte, error)
	rawPut(key, value []byte) error
}

// Overlay buffers writes on top of a base state so a multi-step transition
// can be applied speculatively and committed as one unit. Reads observe
// pending writes first, then fall through to the base. Dropping an
// uncommitted overlay discards every buffered write, which is how composed
// operations roll back as a whole.
//
// An Overlay is not safe for concurrent use.
type Overlay struct {
	base    rawStore
	pending map[string][]byte
	order   []string
}

// NewOverlay creates an overlay on top of the provided manager.
func NewOverlay(base *Manager) *Overlay {
	return &Overlay{base: base, pending: make(map[string][]byte)}
}

// NewNestedOverlay stacks an overlay on another overlay.
func NewNestedOverlay(base *Overlay) *Overlay {
	return &Overlay{base: base, pending: make(map[string][]byte)}
}

func (o *Overlay) rawGet(key []byte) ([]byte, error) {
	if o == nil || o.base == nil {
		return nil, fmt.Errorf("state overlay unavailable")
	}
	if value, ok := o.pending[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return o.base.rawGet(key)
}

func (o *Overlay) rawPut(key, value []byte) error {
	if o == nil || o.base == nil {
		return fmt.Errorf("state overlay unavailable")
	}
	k := string(key)
	if _, exists := o.pending[k]; !exists {
		o.order = append(o.order, k)
	}
	o.pending[k] = append([]byte(nil), value...)
	return nil
}

// KVPut buffers the provided value under the supplied key using RLP encoding.
func (o *Overlay) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return o.rawPut(key, encoded)
}

// KVGet reads through the overlay into the provided destination.
func (o *Overlay) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := o.rawGet(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Commit flushes every buffered write to the base in first-write order and
// empties the overlay. A partially failed commit returns the first error; the
// backends used here are either fully in-memory or write-through, so partial
// commits do not occur in practice.
func (o *Overlay) Commit() error {
	if o == nil || o.base == nil {
		return fmt.Errorf("state overlay unavailable")
	}
	for _, k := range o.order {
		if err := o.base.rawPut([]byte(k), o.pending[k]); err != nil {
			return err
		}
	}
	o.pending = make(map[string][]byte)
	o.order = nil
	return nil
}

// Dirty reports the number of buffered writes.
func (o *Overlay) Dirty() int {
	if o == nil {
		return 0
	}
	return len(o.pending)
}
