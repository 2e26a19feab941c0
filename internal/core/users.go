package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/survey/internal/database"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = "id, name, email, password_hash, role, created_at"

// registerLockKey names the advisory lock held while an account is created.
const registerLockKey int64 = 0x5375727665

// Register validates the form and creates an account. The very first account
// becomes an admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v := NewValidator()
	if v.Required("name", in.Name) {
		v.MaxLength("name", in.Name, 100)
	}
	if v.Required("email", in.Email) {
		v.Email("email", in.Email)
	}
	if v.Required("password", in.Password) {
		v.MinLength("password", in.Password, MinPasswordLength)
		v.MaxLength("password", in.Password, 72)
	}
	v.Check(in.Password == in.PasswordConfirm, "password_confirm", "does not match password")
	if err := v.Err("invalid registration for " + in.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, BusinessLogic(fmt.Sprintf("hash password: %v", err), "This password cannot be used")
	}

	// The advisory lock serializes registrations so only one of two
	// concurrent first sign-ups sees an empty users table.
	var id int64
	err = s.store.WithTx(ctx, func(tx *database.Store) error {
		if _, err := tx.Execute(ctx, database.Q("SELECT pg_advisory_xact_lock($1)", registerLockKey)); err != nil {
			return err
		}
		newID, err := tx.Insert(ctx, database.Q(`
			INSERT INTO users (name, email, password_hash, role)
			VALUES ($1, $2, $3, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'user' ELSE 'admin' END)
			RETURNING id`,
			in.Name, in.Email, string(hash)))
		id = newID
		return err
	})
	if err != nil {
		return nil, WrapDB(err, "register user")
	}

	return s.GetUser(ctx, id)
}

// Authenticate checks credentials. Unknown email and wrong password produce
// the same user-facing message.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const userMsg = "Invalid email or password"

	row, ok, err := s.store.SelectOne(ctx, database.Q(
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		return nil, WrapDB(err, "load user by email")
	}
	if !ok {
		return nil, Unauthorized("login for unknown email "+email, userMsg)
	}

	u := userFromRow(row)
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, Unauthorized(fmt.Sprintf("wrong password for user %d", u.ID), userMsg)
		}
		return nil, Unauthorized(fmt.Sprintf("compare password for user %d: %v", u.ID, err), userMsg)
	}

	return u, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	row, ok, err := s.store.SelectOne(ctx, database.Q(
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, WrapDB(err, "load user")
	}
	if !ok {
		return nil, NotFound(fmt.Sprintf("user %d not found", id), "User not found")
	}
	return userFromRow(row), nil
}

func userFromRow(row database.Row) *User {
	return &User{
		ID:           row.Int64("id"),
		Name:         row.String("name"),
		Email:        row.String("email"),
		PasswordHash: row.String("password_hash"),
		Role:         row.String("role"),
		CreatedAt:    row.Time("created_at"),
	}
}
