package events

import "sathu/core/types"

const (
	// TypeRoleGranted and TypeRoleRevoked track role membership changes.
	// The module attribute names the role namespace that changed.
	TypeRoleGranted = "acl.role_granted"
	TypeRoleRevoked = "acl.role_revoked"
)

// RoleGranted records a role assignment performed by an admin.
type RoleGranted struct {
	Module  string
	Role    string
	Account [20]byte
	Sender  [20]byte
}

func (RoleGranted) EventType() string { return TypeRoleGranted }

func (e RoleGranted) Event() *types.Event {
	return &types.Event{
		Type: TypeRoleGranted,
		Attributes: map[string]string{
			"module":  e.Module,
			"role":    e.Role,
			"account": addressString(e.Account),
			"sender":  addressString(e.Sender),
		},
	}
}

// RoleRevoked records a role removal, whether revoked by an admin or
// renounced by the holder.
type RoleRevoked struct {
	Module  string
	Role    string
	Account [20]byte
	Sender  [20]byte
}

func (RoleRevoked) EventType() string { return TypeRoleRevoked }

func (e RoleRevoked) Event() *types.Event {
	return &types.Event{
		Type: TypeRoleRevoked,
		Attributes: map[string]string{
			"module":  e.Module,
			"role":    e.Role,
			"account": addressString(e.Account),
			"sender":  addressString(e.Sender),
		},
	}
}
