package core

// validation.go collects per-field input problems so a form can show all of
// them at once. Checks append messages; Err turns the collection into a
// Validation AppError (or nil when everything passed).

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validator accumulates field errors in the order they are found.
type Validator struct {
	fields map[string][]string
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{fields: make(map[string][]string)}
}

// Add records a message for field.
func (v *Validator) Add(field, message string) {
	v.fields[field] = append(v.fields[field], message)
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
		return false
	}
	return true
}

// MaxLength checks value has at most n characters.
func (v *Validator) MaxLength(field, value string, n int) {
	v.Check(utf8.RuneCountInString(value) <= n, field, fmt.Sprintf("must be at most %d characters", n))
}

// MinLength checks value has at least n characters.
func (v *Validator) MinLength(field, value string, n int) {
	v.Check(utf8.RuneCountInString(value) >= n, field, fmt.Sprintf("must be at least %d characters", n))
}

// Email checks value is a bare email address.
func (v *Validator) Email(field, value string) {
	addr, err := mail.ParseAddress(value)
	v.Check(err == nil && addr.Address == value, field, "invalid format")
}

// Valid reports whether no errors were recorded.
func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

// Err returns a Validation AppError carrying every recorded message, or nil.
func (v *Validator) Err(internal string) error {
	if v.Valid() {
		return nil
	}
	return Validation(internal, v.fields, "Please correct the highlighted fields")
}
