package types

import (
	"errors"
	"time"
)

// ConsentDocument is an administrator-managed policy PDF the submitter
// must acknowledge before submitting. Consent records reference it by
// Name, not by ID, so deleting a document never touches historical
// consent rows.
type ConsentDocument struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Title     string    `db:"title" json:"title"`
	FilePath  string    `db:"file_path" json:"filePath"`
	SortOrder int       `db:"sort_order" json:"order"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

var ErrDocumentNotFound = errors.New("consent document not found")
