// Package identity maps free-form contact tokens to deliverable email addresses.
package identity

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNotResolvable is returned when a contact is neither a known extension nor an email.
var ErrNotResolvable = errors.New("contact not resolvable")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// Table maps an extension number to an email address.
type Table map[string]string

// Resolve returns the mapped address for a known extension, the contact itself when it
// is already an email address, or ErrNotResolvable.
func Resolve(table Table, contact string) (string, error) {
	key := strings.TrimSpace(contact)
	if key == "" {
		return "", ErrNotResolvable
	}
	if email, ok := table[key]; ok && email != "" {
		return email, nil
	}
	if IsEmail(key) {
		return key, nil
	}
	return "", ErrNotResolvable
}

// IsEmail reports whether s has a non-empty local part and domain without whitespace.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Merge returns a new table holding entries of all tables; later tables win.
func Merge(tables ...Table) Table {
	out := Table{}
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}
