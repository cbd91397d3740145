package errors

import (
	"unicode"
	"unicode/utf8"
)

// MaxWorkers caps the worker count accepted from flags and API queries.
const MaxWorkers = 256

// ValidatePrefix validates a triangle filter prefix.
//
// The empty prefix is allowed and matches every name. A prefix longer than
// nameLength can never match and is rejected, as are whitespace and control
// characters. Names may contain the edge delimiter, so the prefix may too.
func ValidatePrefix(prefix string, nameLength int) error {
	if n := utf8.RuneCountInString(prefix); nameLength > 0 && n > nameLength {
		return New(ErrCodeInvalidInput, "prefix %q is longer than a node name (%d characters)", prefix, nameLength)
	}
	for _, r := range prefix {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "prefix contains invalid characters")
		}
	}
	return nil
}

// ValidateWorkers validates a worker count. Zero means "use GOMAXPROCS".
func ValidateWorkers(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "workers cannot be negative")
	}
	if n > MaxWorkers {
		return New(ErrCodeInvalidInput, "too many workers (max %d)", MaxWorkers)
	}
	return nil
}

// ValidatePath validates an input file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
