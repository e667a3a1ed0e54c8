package validators

import (
	"errors"
	"strings"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrUsernameTooLong  = errors.New("username is too long")
)

const maxFieldLength = 255

func UsernameValidator(u string) error {
	if len(strings.TrimSpace(u)) < 3 {
		return ErrUsernameTooShort
	}

	if len(u) > maxFieldLength {
		return ErrUsernameTooLong
	}

	return nil
}

// RequiredFields returns an error naming the first empty field. Fields are
// given as label/value pairs so the message can say which one is missing.
func RequiredFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		label, value := pairs[i], pairs[i+1]

		if strings.TrimSpace(value) == "" {
			return errors.New(label + " is required")
		}

		if len(value) > maxFieldLength {
			return errors.New(label + " is too long")
		}
	}

	return nil
}
