// Package validate holds the client-side registration checks. These run
// before any network call; invalid input never reaches the identity
// provider.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

var (
	nameRe    = regexp.MustCompile(`^[a-zA-Z\s]*$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
	contactRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Name checks the display name: at least two characters, letters and spaces
// only.
func Name(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("Name is required")
	case len(name) < 2:
		return errors.New("Name must be at least 2 characters")
	case !nameRe.MatchString(name):
		return errors.New("Name can only contain letters and spaces")
	}
	return nil
}

// Email checks the email format.
func Email(email string) error {
	switch {
	case strings.TrimSpace(email) == "":
		return errors.New("Email is required")
	case !emailRe.MatchString(email):
		return errors.New("Invalid email format")
	}
	return nil
}

// Password checks length and character-class requirements.
func Password(password string) error {
	switch {
	case password == "":
		return errors.New("Password is required")
	case len(password) < 8:
		return errors.New("Password must be at least 8 characters")
	case !upperRe.MatchString(password):
		return errors.New("Password must contain at least one uppercase letter")
	case !lowerRe.MatchString(password):
		return errors.New("Password must contain at least one lowercase letter")
	case !digitRe.MatchString(password):
		return errors.New("Password must contain at least one number")
	case !specialRe.MatchString(password):
		return errors.New("Password must contain at least one special character")
	}
	return nil
}

// ConfirmPassword checks that the confirmation field matches the password.
func ConfirmPassword(password, confirm string) error {
	if password != confirm {
		return errors.New("Passwords do not match")
	}
	return nil
}

// ContactNumber checks the phone number: optional leading +, 10-15 digits.
func ContactNumber(contact string) error {
	switch {
	case strings.TrimSpace(contact) == "":
		return errors.New("Contact number is required")
	case !contactRe.MatchString(contact):
		return errors.New("Invalid contact number format")
	}
	return nil
}

// Registration runs every registration check and returns the first failure.
func Registration(name, email, password, contact string) error {
	if err := Name(name); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if err := Password(password); err != nil {
		return err
	}
	return ContactNumber(contact)
}
