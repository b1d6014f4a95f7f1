package actor

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the authenticated caller of a command.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// System is the actor used for transitions the engine raises on its own,
// such as confirming an order once its invoice is paid.
func System() Actor {
	return Actor{ID: uuid.Nil, Role: RoleAdmin}
}
