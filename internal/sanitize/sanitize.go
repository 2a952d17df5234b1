// Package sanitize cleans free text typed by users before it reaches a draft
// or a backend.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/mentorai/pkg/domain"
)

// MaxInputSize is the largest accepted value, in bytes.
const MaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return. Rejections wrap
// domain.ErrValidation.
func Input(input string) (string, error) {
	// Reject rather than truncate so drafts stay deterministic.
	if len(input) > MaxInputSize {
		return "", fmt.Errorf("%w: %w: size=%d limit=%d", domain.ErrValidation, ErrInputTooLarge, len(input), MaxInputSize)
	}
	if !utf8.ValidString(input) {
		return "", fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidUTF8)
	}

	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
