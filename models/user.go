package models

import "time"

// DefaultAdminUsername is the admin account ensured at startup when no
// override is configured.
const DefaultAdminUsername = "Alex"

// User is an account able to rate and tag library movies.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}
