package models

import "time"

// Account is a login account. Every class has one; the administrator has one.
type Account struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	TeacherName string    `json:"teacher_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Identity is what a session knows about the caller.
type Identity struct {
	AccountID   int64  `json:"account_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IdentityOf builds the session identity for an account.
func IdentityOf(a *Account) *Identity {
	return &Identity{
		AccountID:   a.ID,
		Username:    a.Username,
		DisplayName: a.TeacherName,
		Role:        a.Role,
	}
}
