package models

import "time"

// User is an account row in the users table.
//
// PasswordHash holds the bcrypt hash and is never serialized.
type User struct {
	ID           string    `json:"id" example:"5b0c4b0e-3d6f-4a63-9c77-0f2b6f3f2a11"`
	Name         string    `json:"name" example:"Ramesh"`
	Email        string    `json:"email" example:"farmer@email.com"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
