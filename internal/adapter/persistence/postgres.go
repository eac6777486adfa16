// Package persistence implements the repository ports on PostgreSQL using
// database/sql and lib/pq.
package persistence

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/ports"
)

// runner is satisfied by both *sql.DB and *sql.Tx, so every repository can
// serve reads on the pool and writes inside a unit of work.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Open connects to postgres and verifies the connection.
func Open(databaseURL string, maxConns int, maxIdleTime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetConnMaxIdleTime(maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// UnitOfWork runs repository calls inside one postgres transaction. The
// row lock taken by FindByIDForUpdate holds until commit or rollback, which
// serializes concurrent operations against the same lot.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a unit of work over a connection pool.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do begins a transaction, binds the repositories to it and runs fn.
// Any error from fn rolls everything back, including the audit write.
func (u *UnitOfWork) Do(ctx context.Context, fn func(r ports.Repositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "begin transaction", Err: err}
	}
	repos := ports.Repositories{
		Entries:   &EntryRepository{db: tx},
		Inventory: &InventoryRepository{db: tx},
		Audit:     &AuditRepository{db: tx},
		Programs:  &ProgramRepository{db: tx},
	}
	if err := fn(repos); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "commit transaction", Err: err}
	}
	return nil
}

func storeErr(op string, err error) error {
	return &domain.PersistenceError{Op: op, Err: err}
}
