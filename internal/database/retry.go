package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TransientStorageError means the store stayed locked for every attempt.
// The caller may try again later.
type TransientStorageError struct {
	Attempts int
	Err      error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("storage busy after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

// RetryPolicy retries writes that fail because another process holds the
// database lock. Other errors are returned on the first attempt.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 100 * time.Millisecond}
}

// IsTransient reports whether err is SQLite's busy or locked condition.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	message := err.Error()
	return strings.Contains(message, "database is locked") ||
		strings.Contains(message, "database table is locked")
}

func (policy RetryPolicy) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = operation(ctx)
		if !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		slog.Warn("storage locked, retrying", "attempt", attempt, "delay", policy.Delay, "error", err)
		timer := time.NewTimer(policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &TransientStorageError{Attempts: attempt, Err: err}
		case <-timer.C:
		}
	}
	return &TransientStorageError{Attempts: attempts, Err: err}
}

// InTx runs work inside one transaction, retrying the whole transaction when
// the store is locked. work may run more than once and must not keep state
// between runs.
func (policy RetryPolicy) InTx(ctx context.Context, database *sql.DB, work func(tx *sql.Tx) error) error {
	return policy.Do(ctx, func(ctx context.Context) error {
		transaction, err := database.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer transaction.Rollback()

		if err := work(transaction); err != nil {
			return err
		}
		if err := transaction.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}
