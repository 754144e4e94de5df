package model

// Role mirrors the role_id values issued by the identity provider.  Only
// USER accounts accumulate loyalty score; EMPLOYEE and ADMIN act on
// behalf of a named customer when a promotion is involved.
type Role uint8

const (
	RoleAdmin    Role = 1
	RoleUser     Role = 2
	RoleEmployee Role = 3
)

// IsStaff reports whether the role sells tickets on behalf of customers.
func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleEmployee }

// User is the acting account or the named customer of an order.  Only the
// fields the checkout pipeline needs are loaded; profile management lives
// outside this service.
//
// Fields:
//  ID    – account identifier issued by the identity provider.
//  Email – notification address.
//  Role  – access role (ADMIN, USER, EMPLOYEE).
//  Score – loyalty point balance, mutated only on finalized orders.
type User struct {
	ID    string // users.id
	Email string // users.email
	Role  Role   // users.role_id
	Score int64  // users.score
}
