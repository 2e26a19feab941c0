package core

// error_messages.go turns raw storage failures into AppErrors.
//
// The database package returns driver errors untouched. Every service method
// passes them through WrapDB before they leave the package, so the HTTP error
// boundary only ever sees classified failures with safe user messages.
//
// # Classification order
//
//  1. nil stays nil; an AppError already in the chain passes through.
//  2. PostgreSQL errors (pgconn.PgError) are matched on SQLSTATE and, when a
//     rule names one, the violated constraint. The first matching rule wins,
//     so constraint-specific rules come before the generic rule for a code.
//  3. sql.ErrNoRows becomes NotFound.
//  4. Context cancellation and deadlines become Database errors with a
//     timeout message.
//  5. Remaining errors are matched case-insensitively on message fragments
//     (connection failures and the like).
//  6. Everything else is a Database error with the generic message.
//
// # SQLSTATE reference
//
//	23505 unique_violation       -> Conflict
//	23503 foreign_key_violation  -> BusinessLogic
//	23514 check_violation        -> BusinessLogic
//	23502 not_null_violation     -> BusinessLogic
//	22001 string_data_right_truncation -> BusinessLogic
//	22P02 invalid_text_representation  -> BusinessLogic

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// dbRule maps a PostgreSQL error to a kind and user message.
type dbRule struct {
	code       string
	constraint string // empty matches any constraint
	kind       Kind
	message    string
}

var dbRules = []dbRule{
	// Unique violations
	{code: "23505", constraint: "users_email_key", kind: KindConflict,
		message: "An account with this email already exists"},
	{code: "23505", constraint: "idx_responses_survey_user", kind: KindConflict,
		message: "You have already responded to this survey"},
	{code: "23505", kind: KindConflict,
		message: "This record already exists"},

	// Integrity
	{code: "23503", kind: KindBusinessLogic,
		message: "Referenced record does not exist"},
	{code: "23514", kind: KindBusinessLogic,
		message: "A value is not allowed"},
	{code: "23502", kind: KindBusinessLogic,
		message: "A required value is missing"},

	// Data format
	{code: "22001", kind: KindBusinessLogic,
		message: "A value is too long"},
	{code: "22P02", kind: KindBusinessLogic,
		message: "A value has an invalid format"},
}

// errorPattern maps a lower-case message fragment to a database user message.
type errorPattern struct {
	pattern string
	message string
}

var errorPatterns = []errorPattern{
	{"connection refused", "Unable to connect to the database. Please try again in a few moments"},
	{"connection reset", "The database connection was interrupted. Please try again"},
	{"deadlock", "The database was busy with conflicting operations. Please try again"},
	{"too many connections", "The database is busy. Please try again in a few moments"},
	{"timeout", "The operation timed out. Please try again"},
}

// WrapDB classifies a raw storage error. op names the failed operation and
// becomes part of the internal message.
func WrapDB(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}

	internal := op + " failed"

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, rule := range dbRules {
			if rule.code != pgErr.Code {
				continue
			}
			if rule.constraint != "" && rule.constraint != pgErr.ConstraintName {
				continue
			}
			return newAppError(rule.kind, internal, err, []string{rule.message})
		}
		return Database(internal, err)
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return newAppError(KindNotFound, internal, err, []string{"The requested record was not found"})
	case errors.Is(err, context.DeadlineExceeded):
		return Database(internal, err, "The request timed out. Please try again")
	case errors.Is(err, context.Canceled):
		return Database(internal, err, "The request was cancelled. Please try again")
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return Database(internal, err, p.message)
		}
	}

	return Database(internal, err)
}
