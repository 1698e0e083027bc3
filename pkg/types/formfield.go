package types

import (
	"errors"
	"time"
)

const (
	FormFieldTypeText   = "text"
	FormFieldTypeNumber = "number"
	FormFieldTypeDate   = "date"
	FormFieldTypeSelect = "select"
)

// FormField is an administrator-configured extra input on the public
// payment form. Name is the URL/key-safe machine name derived from the
// label; Options holds a JSON array of strings for select fields.
type FormField struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Label     string    `db:"label" json:"label"`
	Type      string    `db:"type" json:"type"`
	Required  bool      `db:"required" json:"required"`
	Options   *string   `db:"options" json:"options"`
	SortOrder int       `db:"sort_order" json:"order"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	IsSystem  bool      `db:"is_system" json:"isSystem"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

var (
	ErrFormFieldNotFound = errors.New("form field not found")
	ErrFormFieldIsSystem = errors.New("system form fields cannot be deleted")
)
