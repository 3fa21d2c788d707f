package model

import "time"

// AdminUser is a registered account as seen by administrators.
type AdminUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate holds editable account fields.
type UserUpdate struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// PendingUser is a registration waiting for email verification.
type PendingUser struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Token       string    `json:"token"`
	TokenExpiry time.Time `json:"token_expiry"`
	CreatedAt   time.Time `json:"created_at"`
}

// Town is a place where players may establish a base.
type Town struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}
