// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("valid email required")
)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	// ParseAddress also accepts "Name <addr>", only the bare address is allowed
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || len(e) > maxFieldLength {
		return ErrEmailInvalid
	}

	return nil
}
