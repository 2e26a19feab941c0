package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestWrapDB(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "duplicate email",
			err:         fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}),
			wantKind:    KindConflict,
			wantMessage: "An account with this email already exists",
		},
		{
			name:        "duplicate response",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "idx_responses_survey_user"},
			wantKind:    KindConflict,
			wantMessage: "You have already responded to this survey",
		},
		{
			name:        "other unique violation",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "questions_survey_id_position_key"},
			wantKind:    KindConflict,
			wantMessage: "This record already exists",
		},
		{
			name:        "foreign key",
			err:         &pgconn.PgError{Code: "23503"},
			wantKind:    KindBusinessLogic,
			wantMessage: "Referenced record does not exist",
		},
		{
			name:        "unclassified sqlstate",
			err:         &pgconn.PgError{Code: "42P01", Message: "relation \"surveys\" does not exist"},
			wantKind:    KindDatabase,
			wantMessage: genericDatabaseMessage,
		},
		{
			name:        "no rows",
			err:         fmt.Errorf("select: %w", sql.ErrNoRows),
			wantKind:    KindNotFound,
			wantMessage: "The requested record was not found",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantKind:    KindDatabase,
			wantMessage: "The request timed out. Please try again",
		},
		{
			name:        "connection refused pattern",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: CONNECTION REFUSED"),
			wantKind:    KindDatabase,
			wantMessage: "Unable to connect to the database. Please try again in a few moments",
		},
		{
			name:        "unknown error",
			err:         errors.New("some random internal error"),
			wantKind:    KindDatabase,
			wantMessage: genericDatabaseMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapDB(tt.err, "test op")

			appErr, ok := AsAppError(got)
			if !ok {
				t.Fatalf("WrapDB() = %T, want *AppError", got)
			}
			if appErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", appErr.Kind, tt.wantKind)
			}
			if appErr.UserMessage() != tt.wantMessage {
				t.Errorf("UserMessage() = %q, want %q", appErr.UserMessage(), tt.wantMessage)
			}
			if !errors.Is(got, tt.err) {
				t.Error("original error not preserved as cause")
			}
		})
	}
}

func TestWrapDB_NilAndPassThrough(t *testing.T) {
	if err := WrapDB(nil, "op"); err != nil {
		t.Errorf("WrapDB(nil) = %v, want nil", err)
	}

	existing := Forbidden("not yours")
	if got := WrapDB(fmt.Errorf("ctx: %w", existing), "op"); !IsKind(got, KindForbidden) {
		t.Errorf("WrapDB() reclassified an AppError: %v", got)
	}
}

func TestWrapDB_InternalMessageNamesOperation(t *testing.T) {
	got := WrapDB(errors.New("boom"), "load survey")
	appErr, _ := AsAppError(got)
	if appErr.Internal != "load survey failed" {
		t.Errorf("Internal = %q", appErr.Internal)
	}
	if appErr.Error() != "load survey failed: boom" {
		t.Errorf("Error() = %q", appErr.Error())
	}
}
