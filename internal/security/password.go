package security

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 16
	passwordSpecials  = "!@#$%^&*"
)

var ErrWeakPassword = errors.New("password must be 8-16 characters with at least one uppercase letter and one of !@#$%^&*")

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

func ValidatePasswordPolicy(plain string) error {
	n := utf8.RuneCountInString(plain)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return ErrWeakPassword
	}

	var hasUpper, hasSpecial bool
	for _, r := range plain {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			hasSpecial = true
		}
	}

	if !hasUpper || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}
