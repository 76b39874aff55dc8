package errors

import (
	"strings"
	"unicode"
)

// maxIdentifierLen bounds node ids, graph names and highlight class names
// accepted from the outside.
const maxIdentifierLen = 256

// ValidateIdentifier checks a user-supplied identifier (graph name, node id,
// highlight class). kind is used in the message, e.g. "graph name".
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No path traversal sequences, since graph names map to files
//   - Maximum length of 256 characters
func ValidateIdentifier(kind, s string) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(s) > maxIdentifierLen {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIdentifierLen)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}
	if strings.Contains(s, "..") || strings.ContainsAny(s, `/\`) {
		return New(ErrCodeInvalidInput, "%s contains path separators or traversal sequences", kind)
	}
	return nil
}

// ValidateClassName checks a highlight class name. Class names become CSS
// classes in the rendering layer, so only letters, digits, '-' and '_' are
// accepted.
func ValidateClassName(s string) error {
	if err := ValidateIdentifier("class name", s); err != nil {
		return err
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return New(ErrCodeInvalidInput, "class name %q contains invalid character %q", s, r)
		}
	}
	return nil
}
