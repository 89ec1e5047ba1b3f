package common

import (
	"errors"
	"strings"
	"testing"

	"sathu/core/state"
	"sathu/storage"
)

func testAddr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func newTestStore() *state.Manager {
	return state.NewManager(storage.NewMemDB())
}

func TestRegistryGrantRevoke(t *testing.T) {
	reg := NewRegistry(newTestStore(), "token")
	addr := testAddr(0x01)

	if reg.Has(RoleMinter, addr) {
		t.Fatalf("fresh registry should be empty")
	}
	added, err := reg.Grant(RoleMinter, addr)
	if err != nil || !added {
		t.Fatalf("grant = %t (%v), want true", added, err)
	}
	if !reg.Has(RoleMinter, addr) {
		t.Fatalf("granted role should be visible")
	}

	added, err = reg.Grant(RoleMinter, addr)
	if err != nil || added {
		t.Fatalf("duplicate grant = %t (%v), want false", added, err)
	}

	removed, err := reg.Revoke(RoleMinter, addr)
	if err != nil || !removed {
		t.Fatalf("revoke = %t (%v), want true", removed, err)
	}
	if reg.Has(RoleMinter, addr) {
		t.Fatalf("revoked role should be gone")
	}
	removed, err = reg.Revoke(RoleMinter, addr)
	if err != nil || removed {
		t.Fatalf("absent revoke = %t (%v), want false", removed, err)
	}
}

func TestRegistryMembersSorted(t *testing.T) {
	reg := NewRegistry(newTestStore(), "token")
	for _, b := range []byte{0x30, 0x10, 0x20} {
		if _, err := reg.Grant(RoleMinter, testAddr(b)); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}
	members, err := reg.Members(RoleMinter)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}
	for i := 1; i < len(members); i++ {
		if members[i-1][19] >= members[i][19] {
			t.Fatalf("members not sorted: %x before %x", members[i-1], members[i])
		}
	}
}

func TestRegistryNamespacesAreDisjoint(t *testing.T) {
	store := newTestStore()
	tokenReg := NewRegistry(store, "token")
	companionReg := NewRegistry(store, "companion")
	addr := testAddr(0x01)

	if _, err := tokenReg.Grant(RoleAdmin, addr); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if companionReg.Has(RoleAdmin, addr) {
		t.Fatalf("roles must not leak across namespaces")
	}
}

func TestRequireReturnsTypedError(t *testing.T) {
	reg := NewRegistry(newTestStore(), "token")
	err := reg.Require(testAddr(0x01), RolePauser)
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if unauthorized.Role != RolePauser {
		t.Fatalf("role = %s, want %s", unauthorized.Role, RolePauser)
	}
	if !strings.Contains(err.Error(), "pauser") {
		t.Fatalf("error should name the missing role: %q", err.Error())
	}
}

func TestPauseLatch(t *testing.T) {
	store := newTestStore()
	latch := NewPauseLatch(store, "token")

	paused, err := latch.Paused()
	if err != nil || paused {
		t.Fatalf("fresh latch should read unpaused, got %t (%v)", paused, err)
	}
	if err := latch.SetPaused(true); err != nil {
		t.Fatalf("set: %v", err)
	}
	paused, err = latch.Paused()
	if err != nil || !paused {
		t.Fatalf("latch should read paused, got %t (%v)", paused, err)
	}

	// Another latch over the same store and namespace sees the flag.
	other := NewPauseLatch(store, "token")
	paused, err = other.Paused()
	if err != nil || !paused {
		t.Fatalf("flag should persist in the store, got %t (%v)", paused, err)
	}

	// A different namespace does not.
	foreign := NewPauseLatch(store, "companion")
	paused, err = foreign.Paused()
	if err != nil || paused {
		t.Fatalf("flag must not leak across namespaces, got %t (%v)", paused, err)
	}
}

func TestPauseLatchOverlay(t *testing.T) {
	mgr := newTestStore()
	latch := NewPauseLatch(mgr, "token")
	overlay := state.NewOverlay(mgr)
	scratch := latch.WithStore(overlay)

	if err := scratch.SetPaused(true); err != nil {
		t.Fatalf("set on overlay: %v", err)
	}
	paused, err := latch.Paused()
	if err != nil || paused {
		t.Fatalf("uncommitted overlay write must not reach the base, got %t (%v)", paused, err)
	}
	if err := overlay.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	paused, err = latch.Paused()
	if err != nil || !paused {
		t.Fatalf("committed flag should be visible, got %t (%v)", paused, err)
	}
}
