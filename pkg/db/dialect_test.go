package db

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPostgresDialectPassesThrough(t *testing.T) {
	d := PostgresDialect{}

	text := "INSERT INTO products (id, name) VALUES ($1, $2) RETURNING *"
	got, wantRows := d.Prepare(text)
	if got != text {
		t.Fatalf("postgres should not rewrite text, got %q", got)
	}
	if !wantRows {
		t.Fatal("RETURNING should request rows on postgres")
	}

	_, wantRows = d.Prepare("UPDATE products SET quantity = quantity - $1 WHERE id = $2")
	if wantRows {
		t.Fatal("plain UPDATE should not request rows")
	}

	_, wantRows = d.Prepare("SELECT * FROM products WHERE id = $1")
	if !wantRows {
		t.Fatal("SELECT should request rows")
	}
}

func TestSQLiteDialectRewritesPlaceholders(t *testing.T) {
	d := SQLiteDialect{}

	got, wantRows := d.Prepare("SELECT * FROM products WHERE id = $1 AND status = $2")
	if got != "SELECT * FROM products WHERE id = ? AND status = ?" {
		t.Fatalf("unexpected rewrite: %q", got)
	}
	if !wantRows {
		t.Fatal("SELECT should request rows")
	}
}

func TestSQLiteDialectStripsReturning(t *testing.T) {
	d := SQLiteDialect{}

	got, wantRows := d.Prepare("INSERT INTO products (id, name) VALUES ($1, $2) RETURNING *")
	if got != "INSERT INTO products (id, name) VALUES (?, ?)" {
		t.Fatalf("RETURNING should be stripped, got %q", got)
	}
	if wantRows {
		t.Fatal("a write on sqlite can never produce rows")
	}

	got, _ = d.Prepare("INSERT INTO users (id) VALUES ($1) returning id, mobile")
	if got != "INSERT INTO users (id) VALUES (?)" {
		t.Fatalf("case-insensitive RETURNING should be stripped, got %q", got)
	}
}

func TestSQLiteDialectDoubleDigitPlaceholders(t *testing.T) {
	d := SQLiteDialect{}

	got, _ := d.Prepare("INSERT INTO t VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)")
	want := "INSERT INTO t VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{
		"name":     "Golden Wheat",
		"quantity": float64(1000),
		"price":    "25",
		"count":    int64(3),
		"missing":  nil,
	}

	if r.String("name") != "Golden Wheat" {
		t.Fatalf("unexpected string: %q", r.String("name"))
	}
	if r.Float("quantity") != 1000 {
		t.Fatalf("unexpected float: %v", r.Float("quantity"))
	}
	if !r.Decimal("price").Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected decimal: %v", r.Decimal("price"))
	}
	if r.Int("count") != 3 {
		t.Fatalf("unexpected int: %v", r.Int("count"))
	}
	if r.String("missing") != "" {
		t.Fatal("nil column should stringify empty")
	}
}
