package models

import "strings"

// Role defines what an account may do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// AdminUsername is the identifier of the single administrator account.
const AdminUsername = "ADMIN"

// NormalizeClass upper-cases and trims a class identifier ("10a1 " -> "10A1").
func NormalizeClass(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
