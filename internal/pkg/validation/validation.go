package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	MinPasswordLength = 3
	MaxNameLength     = 100
)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least MinPasswordLength characters and rejects
// passwords that contain the e-mail address.
func IsValidPassword(password, email string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	if email != "" && strings.Contains(strings.ToLower(password), strings.ToLower(email)) {
		return false
	}
	return true
}

// IsValidProjectName: 1..MaxNameLength characters, not blank, not made only of digits.
func IsValidProjectName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLength || strings.TrimSpace(name) == "" {
		return false
	}
	return !isNumeric(name)
}

// isNumeric reports whether s is non-empty and every rune is a numeric
// character. Signs, dots and exponents are not numeric.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// ErrUnknownField marks a request body carrying fields the endpoint does not accept.
var ErrUnknownField = errors.New("unknown field in request body")

// DecodeStrict unmarshals a JSON object into v and rejects unknown fields.
// An empty body decodes to the zero value.
func DecodeStrict(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return errors.Join(ErrUnknownField, err)
		}
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
