package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the basic entity of the system
type User struct {
	gorm.Model
	Username string     `gorm:"uniqueIndex;type:varchar(32);not null"`
	Email    string     `gorm:"uniqueIndex;type:varchar(128);not null"`
	Password string     `gorm:"type:varchar(128);not null"` // bcrypt hash, never serialized
	Name     string     `gorm:"type:varchar(64)"`
	Role     GlobalRole `gorm:"type:varchar(32);not null;default:user"`

	Memberships []ProjectMember
}

// UserView is the only representation of a user that leaves the API.
// The password column has no counterpart here, so a new endpoint
// cannot forget to strip it.
type UserView struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      GlobalRole `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin reports whether the user holds the platform admin role,
// which bypasses all per-project checks.
func (u *User) IsAdmin() bool {
	return u.Role == GlobalRoleAdmin
}
