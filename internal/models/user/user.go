package user

import "time"

type User struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        Role      `json:"role" db:"role"`
	FCMToken    string    `json:"-" db:"fcm_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Role string

const RoleAdmin Role = "admin"
const RoleManager Role = "manager"
const RoleStaff Role = "staff"

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}
