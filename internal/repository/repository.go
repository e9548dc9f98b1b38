package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caseboard/visit-scheduler/internal/database"
)

var ErrNotFound = errors.New("record not found")

// Querier is the part of *sql.DB and *sql.Tx the repositories need, so the
// same repository can run standalone or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func wrapFind(action string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func requireAffected(result sql.Result, action string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return nil
}

type Repositories struct {
	Users           UserRepository
	APITokens       APITokenRepository
	Staff           StaffRepository
	Areas           AreaRepository
	Cases           CaseRepository
	UnassignedCases UnassignedCaseRepository
	Assignments     AssignmentRepository
	ScheduleEntries ScheduleEntryRepository
}

func NewRepositories(database Querier) Repositories {
	return Repositories{
		Users:           NewUserRepository(database),
		APITokens:       NewAPITokenRepository(database),
		Staff:           NewStaffRepository(database),
		Areas:           NewAreaRepository(database),
		Cases:           NewCaseRepository(database),
		UnassignedCases: NewUnassignedCaseRepository(database),
		Assignments:     NewAssignmentRepository(database),
		ScheduleEntries: NewScheduleEntryRepository(database),
	}
}

// UnitOfWork runs work against repositories bound to a single transaction.
// work may be retried and must only touch the repositories it is given.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, work func(Repositories) error) error
}

// Store hands out repositories for reads and runs writes through the retry
// policy inside one transaction.
type Store struct {
	Repositories
	connection *sql.DB
	retry      database.RetryPolicy
}

func NewStore(connection *sql.DB, retry database.RetryPolicy) *Store {
	return &Store{
		Repositories: NewRepositories(connection),
		connection:   connection,
		retry:        retry,
	}
}

func (store *Store) WithinTransaction(ctx context.Context, work func(Repositories) error) error {
	return store.retry.InTx(ctx, store.connection, func(transaction *sql.Tx) error {
		return work(NewRepositories(transaction))
	})
}
