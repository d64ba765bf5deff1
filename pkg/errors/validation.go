package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// moduleNameRegex matches valid netlist module names: a letter followed by
// letters, digits, underscores or hyphens. Module names double as pin
// reference prefixes ("cpu.0"), so dots are reserved.
var moduleNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateModuleName validates a netlist module name.
// Names appear in pin references, file names, and rendered labels, so the
// rules are intentionally conservative.
func ValidateModuleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModule, "module name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidModule, "module name too long (max 64 characters)")
	}

	if !moduleNameRegex.MatchString(name) {
		return New(ErrCodeInvalidModule, "invalid module name: %q", name)
	}

	return nil
}

// ValidateRunID validates a placement-run identifier. Run IDs are UUIDs
// issued by the store, but they also arrive from URLs and CLI arguments, so
// they are checked before being used in file paths or database queries.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run ID cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "run ID too long (max 64 characters)")
	}

	for _, r := range id {
		if !(r == '-' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')) {
			return New(ErrCodeInvalidInput, "invalid run ID: %q", id)
		}
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
