package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"taskboard/models"
)

// ValidateTaskInput checks new task content. Empty content is handled by the
// caller as "nothing to create" and is not an error here. There is no length
// limit; content is stored exactly as entered.
func ValidateTaskInput(content string) error {
	if !utf8.ValidString(content) {
		return errors.New("content is not valid UTF-8")
	}
	return nil
}

// ParseStatus maps a column name from a form or flag onto a board column.
// Matching is case-insensitive; the unset status is rejected.
func ParseStatus(s string) (models.Status, error) {
	status := models.Status(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}
