package db

import (
	"context"
	"database/sql"
	"errors"

	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"go.uber.org/multierr"
)

// Scope binds one logical unit of work to an execution context. On the
// networked engine it holds a dedicated transaction from the pool; on the
// embedded engine it shares the single ambient connection and Commit,
// Rollback and Release are no-ops. Callers must not assume isolation from
// concurrent writers in embedded mode.
//
// A caller that obtains a scope must call exactly one of Commit or Rollback,
// then Release, on every code path. Release is idempotent.
type Scope struct {
	dialect  Dialect
	tx       *sql.Tx // nil in embedded mode
	db       *sql.DB
	settled  bool
	released bool
}

// Begin acquires a scope. For postgres this opens a real transaction on a
// pooled connection; for sqlite it returns a pass-through scope.
func (c *Client) Begin(ctx context.Context) (*Scope, error) {
	if !c.dialect.Transactional() {
		return &Scope{dialect: c.dialect, db: c.sqlDB}, nil
	}

	tx, err := c.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeQuery, err, "beginning transaction")
	}
	return &Scope{dialect: c.dialect, tx: tx}, nil
}

// Exec runs one canonical query inside the scope.
func (s *Scope) Exec(ctx context.Context, text string, args ...any) (Result, error) {
	if s.released {
		return Result{}, pkgerrors.New(pkgerrors.CodeInternal, "scope already released")
	}
	if s.tx != nil {
		return run(ctx, s.tx, s.dialect, text, args)
	}
	return run(ctx, s.db, s.dialect, text, args)
}

// Commit makes the scope's writes durable. No-op in embedded mode.
func (s *Scope) Commit() error {
	s.settled = true
	if s.tx == nil {
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeQuery, err, "committing transaction")
	}
	return nil
}

// Rollback discards the scope's writes. No-op in embedded mode.
func (s *Scope) Rollback() error {
	s.settled = true
	if s.tx == nil {
		return nil
	}
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return pkgerrors.Wrap(pkgerrors.CodeQuery, err, "rolling back transaction")
	}
	return nil
}

// Release returns the scope's connection. Safe to call more than once; an
// unsettled transactional scope is rolled back so the connection never goes
// back to the pool mid-transaction.
func (s *Scope) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	if s.tx != nil && !s.settled {
		return s.Rollback()
	}
	return nil
}

// WithScope runs fn inside one scope, committing on success and rolling back
// on error or panic. Release happens on every exit path.
func (c *Client) WithScope(ctx context.Context, fn func(*Scope) error) error {
	scope, err := c.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = scope.Rollback()
			_ = scope.Release()
			panic(r)
		}
	}()

	if err := fn(scope); err != nil {
		err = multierr.Append(err, scope.Rollback())
		return multierr.Append(err, scope.Release())
	}

	if err := scope.Commit(); err != nil {
		return multierr.Append(err, scope.Release())
	}
	return scope.Release()
}
