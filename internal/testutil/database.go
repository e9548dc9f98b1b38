package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/caseboard/visit-scheduler/internal/database"
	"github.com/caseboard/visit-scheduler/internal/repository"
)

func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.MemoryPath, 0)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// NewTestStore wraps a fresh test database with a short retry policy.
func NewTestStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(NewTestDatabase(t), database.RetryPolicy{Attempts: 2, Delay: time.Millisecond})
}
