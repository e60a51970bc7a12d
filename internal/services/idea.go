package services

import (
	"strings"
	"unicode/utf8"
)

// validateIdea rejects blank ideas and enforces the rune limit (0 disables
// it). Both checks run on the trimmed text; the caller keeps the raw idea.
func validateIdea(idea string, maxRunes int) error {
	trimmed := strings.TrimSpace(idea)
	if trimmed == "" {
		return ErrEmptyIdea
	}
	if maxRunes > 0 && utf8.RuneCountInString(trimmed) > maxRunes {
		return ErrIdeaTooLong
	}
	return nil
}
