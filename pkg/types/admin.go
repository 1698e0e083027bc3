package types

import (
	"errors"
	"time"
)

type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

var (
	ErrAdminNotFound = errors.New("admin account not found")
	ErrAdminExists   = errors.New("admin account with that email already exists")

	// ErrLastAdmin rejects deleting the only remaining admin account.
	ErrLastAdmin = errors.New("the last remaining admin account cannot be deleted")

	// ErrSetupDone rejects first-run setup once any admin exists.
	ErrSetupDone = errors.New("an admin account already exists")
)
