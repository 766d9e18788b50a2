package models

import (
	"context"
	"database/sql"
)

// DBTX is the database access interface satisfied by both *sql.DB and
// *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New creates a Queries value bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries is the query layer over the collaboration schema.
type Queries struct {
	db DBTX
}

// WithTx returns a Queries value bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
