package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleLabManager UserRole = "lab_manager"
	UserRoleAdmin      UserRole = "admin"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanApprove reports whether the user may decide on reservation requests.
func (u *User) CanApprove() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleLabManager
}

// Actor is the authenticated identity stamped onto writes.
type Actor struct {
	UserID uuid.UUID
	Role   UserRole
}

func (a Actor) CanApprove() bool {
	return a.Role == UserRoleAdmin || a.Role == UserRoleLabManager
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
