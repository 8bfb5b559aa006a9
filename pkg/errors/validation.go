package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateItemID validates an item identifier coming from an item source.
// IDs end up in cache keys, SVG element ids and URLs, so the rules are
// conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No quotes or angle brackets
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidItem, "item id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidItem, "item id contains whitespace or control characters")
		}
	}

	if strings.ContainsAny(id, `"'<>&`) {
		return New(ErrCodeInvalidItem, "item id contains invalid characters: %q", id)
	}

	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates an item color. Only CSS hex colors are accepted
// because the value is written verbatim into SVG attributes.
// An empty color is valid and means "use the theme default".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidItem, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidatePath validates a file path given to an item source or an output
// flag.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
