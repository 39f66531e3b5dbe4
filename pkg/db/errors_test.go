package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	cause := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: "orders_order_number_key",
	}
	err := fmt.Errorf("insert order: %w", cause)

	if !IsUniqueViolation(err, "") {
		t.Fatalf("pgx unique violation not detected")
	}
	if !IsUniqueViolation(err, "order_number") {
		t.Fatalf("constraint name not matched through pgx error")
	}
	if IsUniqueViolation(err, "mobile") {
		t.Fatalf("matched unrelated constraint")
	}

	other := &pgconn.PgError{Code: "23503"}
	if IsUniqueViolation(fmt.Errorf("insert order: %w", other), "") {
		t.Fatalf("foreign key violation treated as unique violation")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	cause := &pq.Error{Code: "23505", Constraint: "users_mobile_key"}
	if !IsUniqueViolation(fmt.Errorf("insert user: %w", cause), "") {
		t.Fatalf("pq unique violation not detected")
	}
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	cause := sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintUnique,
	}
	if !IsUniqueViolation(fmt.Errorf("insert user: %w", cause), "") {
		t.Fatalf("sqlite unique violation not detected")
	}
}

func TestIsUniqueViolationTextFallback(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: orders.order_number")
	if !IsUniqueViolation(err, "order_number") {
		t.Fatalf("text-only unique violation not detected")
	}
	if IsUniqueViolation(errors.New("connection reset"), "") {
		t.Fatalf("unrelated error treated as unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error treated as unique violation")
	}
}
