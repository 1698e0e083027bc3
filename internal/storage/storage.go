// Package storage persists uploaded files: payment receipts under
// uploads/ and policy PDFs under documents/. Backends share key naming so
// the rest of the system never cares which one is wired.
package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"
)

// Store is the durable file collaborator. Keys are forward-slash relative
// paths such as "uploads/1714-42-receipt.pdf".
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var (
	whitespace      = regexp.MustCompile(`\s+`)
	documentCharset = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// ReceiptName builds a collision-resistant stored name for a receipt:
// {epochMillis}-{randomInt}-{sanitizedOriginalName}. The original name is
// lowercased with whitespace collapsed to dashes.
func ReceiptName(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.ToLower(whitespace.ReplaceAllString(base, "-"))
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), base)
}

// DocumentName builds the stored name for a policy PDF:
// {epochMillis}_{safeName}, with whitespace collapsed to underscores and
// anything outside [a-zA-Z0-9._-] stripped.
func DocumentName(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = whitespace.ReplaceAllString(base, "_")
	base = documentCharset.ReplaceAllString(base, "")
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), base)
}

// SafeRelPath rejects names that could climb out of the storage root.
func SafeRelPath(name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, "~") {
		return false
	}
	return !path.IsAbs(name)
}

// ContentTypeByExt resolves a MIME type from a file extension, defaulting
// to application/octet-stream.
func ContentTypeByExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
