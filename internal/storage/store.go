// Package storage persists uploaded workbooks and generated reports.
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a stored object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidName is returned for names that are empty or escape the store.
	ErrInvalidName = errors.New("invalid object name")
)

// ReportStore saves and retrieves named report files.
type ReportStore interface {
	// Save stores data under name and returns where it was written.
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Open returns the contents stored under name.
	Open(ctx context.Context, name string) ([]byte, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName reduces a client supplied file name to a plain base name made of
// letters, digits, dots, dashes and underscores.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}

// checkName rejects names that SafeName would alter.
func checkName(name string) error {
	if name == "" || SafeName(name) != name {
		return ErrInvalidName
	}
	return nil
}
