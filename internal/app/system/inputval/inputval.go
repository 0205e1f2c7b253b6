// internal/app/system/inputval/inputval.go

// Package inputval holds the local input preconditions checked before
// any provider call is made. Every error returned here is a validation
// error: it is surfaced immediately and no network effect has happened.
package inputval

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmailDomain is returned when a signup email is not on the
	// institution's domain.
	ErrEmailDomain = errors.New("email must be an institutional address")
	// ErrStudentNumber is returned when a student number is not a
	// 7-digit numeric string.
	ErrStudentNumber = errors.New("student number must be exactly 7 digits")
	// ErrWeakPassword is returned when a password is shorter than the
	// minimum length. The identity provider may enforce its own floor
	// independently.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrEmptyField is returned when a required text field is empty or
	// whitespace-only after trimming.
	ErrEmptyField = errors.New("required field is empty")
)

// MinPasswordLen is the local password floor applied at signup.
const MinPasswordLen = 8

var studentNumberRe = regexp.MustCompile(`^\d{7}$`)

// InstitutionalEmail checks that email is an address on the given
// domain (e.g. "tip.edu.ph"), case-insensitively.
func InstitutionalEmail(email, domain string) error {
	suffix := strings.ToLower(domain)
	if !strings.HasPrefix(suffix, "@") {
		suffix = "@" + suffix
	}
	e := strings.ToLower(strings.TrimSpace(email))
	if len(e) <= len(suffix) || !strings.HasSuffix(e, suffix) {
		return ErrEmailDomain
	}
	return nil
}

// StudentNumber checks the 7-digit student number shape.
func StudentNumber(sn string) error {
	if !studentNumberRe.MatchString(sn) {
		return ErrStudentNumber
	}
	return nil
}

// Password checks the local password length floor.
func Password(pw string) error {
	if len(pw) < MinPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

// NonEmpty checks that every value is non-empty after trimming.
func NonEmpty(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return ErrEmptyField
		}
	}
	return nil
}

// IsValidation reports whether err belongs to the validation class,
// i.e. it was produced by a local precondition and no network call was
// made.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmailDomain) ||
		errors.Is(err, ErrStudentNumber) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrEmptyField)
}
