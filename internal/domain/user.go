package domain

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleStaff UserRole = "STAFF"
)

// User is a staff account for the management API, not a rental client.
type User struct {
	ID           int32     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedOn    time.Time `json:"created_on"`
}
