package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func TestDumpCapturesPgxDetail(t *testing.T) {
	cause := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		Detail:         "Key (order_number)=(ORD-20250901-000001) already exists.",
		TableName:      "orders",
		ConstraintName: "orders_order_number_key",
	}
	dump := Dump(Wrap(CodeQuery, fmt.Errorf("insert order: %w", cause), "placing order"))

	if dump.Code != CodeQuery {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.PGCode != "23505" {
		t.Fatalf("pg code not captured, got %q", dump.PGCode)
	}
	if dump.PGConstraint != "orders_order_number_key" {
		t.Fatalf("pg constraint not captured, got %q", dump.PGConstraint)
	}
	if dump.PGTable != "orders" {
		t.Fatalf("pg table not captured, got %q", dump.PGTable)
	}
	if dump.PGDetail == "" || dump.PGMessage == "" {
		t.Fatalf("pg detail/message not captured")
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}

func TestDumpCapturesSQLiteDetail(t *testing.T) {
	cause := sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintUnique,
	}
	dump := Dump(Wrap(CodeQuery, fmt.Errorf("insert user: %w", cause), "registering"))

	if dump.SQLiteCode == "" {
		t.Fatalf("sqlite code not captured")
	}
	if dump.PGCode != "" {
		t.Fatalf("sqlite error should not set pg fields")
	}
}

func TestDumpNilError(t *testing.T) {
	dump := Dump(nil)
	if dump.TopMessage != "" || dump.Code != "" {
		t.Fatalf("nil error should produce empty dump")
	}
}
