package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a graph node identifier. The rules are
// intentionally conservative so IDs are safe in URLs, cache keys and DOT
// output:
//   - non-empty, at most 256 characters
//   - no control characters or null bytes
//   - no path traversal sequences
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidNode, "node id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id contains control characters")
		}
	}
	for _, pattern := range []string{"..", "//", "\x00", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidNode, "node id contains invalid sequence %q", pattern)
		}
	}
	return nil
}

// graphNameRegex matches stored graph names: word characters, dots and
// dashes, with optional slash-separated segments.
var graphNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+(/[A-Za-z0-9._-]+)*$`)

// ValidateGraphName validates the name under which a graph is stored.
func ValidateGraphName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "graph name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "graph name too long (max 128 characters)")
	}
	if !graphNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid graph name: %q", name)
	}
	return nil
}
