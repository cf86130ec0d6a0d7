// Package sanitize strips markup from user supplied display text.
package sanitize

import (
	"errors"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrUnstableSanitisation = errors.New("sanitisation did not stabilise")
	ErrInvalidURL           = errors.New("url must be absolute http(s)")
)

const maxPasses = 10

var strict = bluemonday.StrictPolicy()

// Text removes every HTML element from value. Sanitising is repeated until
// the output stops changing so nested payloads cannot survive one pass.
func Text(value string) (string, error) {
	value = strings.TrimSpace(value)
	for i := 0; i < maxPasses; i++ {
		clean := strict.Sanitize(value)
		if clean == value {
			return html.UnescapeString(clean), nil
		}
		value = clean
	}
	return "", ErrUnstableSanitisation
}

// URL accepts empty strings and absolute http(s) URLs only.
func URL(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}
