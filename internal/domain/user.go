package domain

import "time"

// User is the normalized identity delivered to session subscribers.
// IsAdmin is derived from the configured admin email on every
// delivery; it is never stored.
type User struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
	IsAdmin     bool
}

// Account is the stored credential record behind a User.
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PhotoURL     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
