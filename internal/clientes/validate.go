package clientes

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	keyPattern   = regexp.MustCompile(`^[0-9]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitPattern = regexp.MustCompile(`^[0-9]$`)
)

const (
	minNameLength = 2
	maxNameLength = 100
	phoneLength   = 10
)

// ValidateKey accepts non-empty strings of decimal digits.
func ValidateKey(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return key, nil
}

// ValidateName returns the trimmed name when its length is within [2, 100].
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < minNameLength || n > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// ValidatePhone returns the trimmed phone when it is exactly 10 characters.
func ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if utf8.RuneCountInString(phone) != phoneLength {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// ValidateEmail accepts addresses shaped like local@domain.tld.
func ValidateEmail(email string) (string, error) {
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePage requires 1 <= page <= totalPages.
func ValidatePage(page, totalPages int) (int, error) {
	if page < 1 || page > totalPages {
		return 0, invalidPage(totalPages)
	}
	return page, nil
}
