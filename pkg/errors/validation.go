package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// prototypeNameRegex matches prototype identifiers such as "electric-mining-drill".
var prototypeNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidatePrototypeName validates a prototype identifier.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Lowercase letters, digits, dashes and underscores only
//   - Maximum length of 128 characters
func ValidatePrototypeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "prototype name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "prototype name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "prototype name contains invalid control characters")
		}
	}

	if !prototypeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid prototype name: %q", name)
	}

	return nil
}

// ValidatePath validates a scenario or catalog file path.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
