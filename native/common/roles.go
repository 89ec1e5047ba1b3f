package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"sathu/crypto"
)

// Role names a capability grouping assignable to any number of accounts.
type Role string

const (
	// RoleAdmin administers every role, including itself.
	RoleAdmin Role = "admin"
	// RoleMinter may create new supply.
	RoleMinter Role = "minter"
	// RolePauser may toggle the pause flag.
	RolePauser Role = "pauser"
)

// UnauthorizedError reports a caller missing the role an operation requires.
type UnauthorizedError struct {
	Addr [20]byte
	Role Role
}

func (e *UnauthorizedError) Error() string {
	if e == nil {
		return ""
	}
	addr := crypto.MustNewAddress(crypto.SathuPrefix, e.Addr[:]).String()
	return fmt.Sprintf("account %s is missing role %s", addr, e.Role)
}

// Registry maintains role membership sets within a keyed namespace so that
// independent modules (the token ledger and its companion) keep disjoint role
// state in the same backing store. Member lists are stored sorted and
// deduplicated for deterministic state.
type Registry struct {
	store  Storage
	prefix string
}

// NewRegistry constructs a role registry rooted at the provided namespace.
func NewRegistry(store Storage, namespace string) *Registry {
	return &Registry{store: store, prefix: strings.TrimSpace(namespace)}
}

// WithStore rebinds the registry to another storage backend, preserving the
// namespace. Used when operating on a speculative overlay.
func (r *Registry) WithStore(store Storage) *Registry {
	if r == nil {
		return nil
	}
	return &Registry{store: store, prefix: r.prefix}
}

func (r *Registry) roleKey(role Role) []byte {
	return []byte(fmt.Sprintf("%s/role/%s", r.prefix, role))
}

func (r *Registry) members(role Role) ([][]byte, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("role registry not initialised")
	}
	var stored [][]byte
	ok, err := r.store.KVGet(r.roleKey(role), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return [][]byte{}, nil
	}
	return stored, nil
}

func (r *Registry) writeMembers(role Role, members [][]byte) error {
	sort.Slice(members, func(i, j int) bool {
		return hex.EncodeToString(members[i]) < hex.EncodeToString(members[j])
	})
	return r.store.KVPut(r.roleKey(role), members)
}

// Has reports whether the account holds the role. Read failures resolve to
// false, matching the best-effort semantics role checks require.
func (r *Registry) Has(role Role, addr [20]byte) bool {
	members, err := r.members(role)
	if err != nil {
		return false
	}
	for _, member := range members {
		if bytes.Equal(member, addr[:]) {
			return true
		}
	}
	return false
}

// Grant adds the account to the role set. The returned boolean reports
// whether membership actually changed; granting an already-held role is a
// silent no-op.
func (r *Registry) Grant(role Role, addr [20]byte) (bool, error) {
	members, err := r.members(role)
	if err != nil {
		return false, err
	}
	for _, member := range members {
		if bytes.Equal(member, addr[:]) {
			return false, nil
		}
	}
	members = append(members, append([]byte(nil), addr[:]...))
	if err := r.writeMembers(role, members); err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes the account from the role set. Revoking an absent role is a
// silent no-op reported via the returned boolean.
func (r *Registry) Revoke(role Role, addr [20]byte) (bool, error) {
	members, err := r.members(role)
	if err != nil {
		return false, err
	}
	kept := make([][]byte, 0, len(members))
	removed := false
	for _, member := range members {
		if bytes.Equal(member, addr[:]) {
			removed = true
			continue
		}
		kept = append(kept, member)
	}
	if !removed {
		return false, nil
	}
	if err := r.writeMembers(role, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Members returns every account holding the role.
func (r *Registry) Members(role Role) ([][20]byte, error) {
	members, err := r.members(role)
	if err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(members))
	for _, member := range members {
		if len(member) != crypto.AddressLength {
			return nil, fmt.Errorf("role %s: malformed member entry", role)
		}
		var addr [20]byte
		copy(addr[:], member)
		out = append(out, addr)
	}
	return out, nil
}

// Require returns an UnauthorizedError naming the caller and the missing role
// when the account does not hold it.
func (r *Registry) Require(addr [20]byte, role Role) error {
	if r.Has(role, addr) {
		return nil
	}
	return &UnauthorizedError{Addr: addr, Role: role}
}
