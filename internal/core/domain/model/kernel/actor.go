package kernel

import (
	"dispatch/internal/pkg/errs"
)

// Role is the kind of party behind a request or realtime session.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw role name, as carried in tokens and auth events, into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", errs.NewValueIsInvalidError("role")
	}
	return r, nil
}

// Roles lists every known role in a stable order.
func Roles() []Role {
	return []Role{RoleCustomer, RoleWorker, RoleAdmin}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleWorker, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is the verified identity attached to a request or session.
// Identity verification happens at the transport boundary; the domain only checks roles and ownership.
type Actor struct {
	ID   UUID
	Role Role
}

// NewActor builds an Actor from an identifier and a role.
func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	if !role.IsValid() {
		return Actor{}, errs.NewValueIsInvalidError("role")
	}
	return Actor{ID: id, Role: role}, nil
}

// Validate checks that the actor carries a constructed id and a known role.
func (a Actor) Validate() error {
	_, err := NewActor(a.ID, a.Role)
	return err
}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}
