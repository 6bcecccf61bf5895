package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/lexibuild/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "lemma", "atim"); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRowsMessage(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "lemma", "nipâw@v")
	if want := "lemma nipâw@v: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan row: %w", pgx.ErrNoRows), want: domain.ErrNotFound},
		{name: "unique_violation", err: &pgconn.PgError{Code: "23505"}, want: domain.ErrAlreadyExists},
		{name: "foreign_key_violation", err: &pgconn.PgError{Code: "23503"}, want: domain.ErrNotFound},
		{name: "check_violation", err: &pgconn.PgError{Code: "23514"}, want: domain.ErrValidation},
		{name: "wrapped pg error", err: fmt.Errorf("copy: %w", &pgconn.PgError{Code: "23505"}), want: domain.ErrAlreadyExists},
		{name: "deadline passes through", err: context.DeadlineExceeded, want: context.DeadlineExceeded},
		{name: "canceled passes through", err: context.Canceled, want: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MapError(tt.err, "build", "b1"); !errors.Is(got, tt.want) {
				t.Errorf("MapError(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapError_ContextNotMappedToDomain(t *testing.T) {
	t.Parallel()

	got := MapError(context.Canceled, "build", "b1")
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("MapError(Canceled) should not wrap domain.ErrNotFound")
	}
}

func TestMapError_UnknownPgError(t *testing.T) {
	t.Parallel()

	got := MapError(&pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, "build", "b1")

	var unwrapped *pgconn.PgError
	if !errors.As(got, &unwrapped) {
		t.Errorf("MapError(unknown PgError) does not wrap *pgconn.PgError: %v", got)
	}
	if errors.Is(got, domain.ErrNotFound) || errors.Is(got, domain.ErrAlreadyExists) || errors.Is(got, domain.ErrValidation) {
		t.Error("MapError(unknown PgError) should not map to a domain error")
	}
}

func TestMapError_UnknownError(t *testing.T) {
	t.Parallel()

	original := errors.New("something unexpected")
	got := MapError(original, "build", "b1")
	if !errors.Is(got, original) {
		t.Errorf("MapError(unknown) does not wrap original error: %v", got)
	}
	if want := "build b1: something unexpected"; got.Error() != want {
		t.Errorf("MapError(unknown).Error() = %q, want %q", got.Error(), want)
	}
}
