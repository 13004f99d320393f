package models

import "time"

// UserRole represents the available roles.
type UserRole string

const (
	RoleUser     UserRole = "USER"
	RoleOfficial UserRole = "OFFICIAL"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents an application user stored in the users table.
type User struct {
	ID                 string    `db:"id" json:"id"`
	Username           string    `db:"username" json:"username"`
	Email              string    `db:"email" json:"email"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	Region             string    `db:"region" json:"region"`
	Role               UserRole  `db:"role" json:"role"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
