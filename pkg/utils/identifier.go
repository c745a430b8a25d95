package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SanitizeFilename reduces an uploaded filename to a safe base name:
// path components are stripped and anything outside [A-Za-z0-9._-] is
// replaced with an underscore.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "audio"
	}
	return out
}

// UniqueIdentifier derives a collision-resistant asset identifier from the
// original filename: a random UUID hex prefix joined to the sanitized name.
// Two uploads of the same file therefore never share an identifier.
func UniqueIdentifier(originalName string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return suffix + "_" + SanitizeFilename(originalName)
}
