package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Record is one result row keyed by column name. Values carry whatever the
// driver produced; use the typed accessors instead of asserting directly.
type Record map[string]any

// Result is the uniform shape every engine produces for a canonical query.
// Rows preserves result order. RowsAffected is populated for writes on both
// engines; for row-producing statements it equals len(Rows).
type Result struct {
	Rows         []Record
	RowsAffected int64
}

// First returns the first row, or nil when the engine produced none. Write
// statements on the embedded engine never produce rows even when the
// canonical query carries a RETURNING clause, so callers must treat a nil
// row as "reconstruct from input", not as an error.
func (r Result) First() Record {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// Dialect translates the canonical query form (positional $N placeholders,
// optional RETURNING clause) into engine-specific text. Implementations are
// chosen once at boot; call sites never branch on engine identity.
type Dialect interface {
	Name() string
	// Prepare returns the engine text and whether execution is expected to
	// produce rows.
	Prepare(text string) (string, bool)
	// Transactional reports whether the engine provides real transaction
	// scopes. The embedded engine does not; its scopes are no-ops.
	Transactional() bool
}

var (
	placeholderPattern = regexp.MustCompile(`\$\d+`)
	returningPattern   = regexp.MustCompile(`(?is)\s+RETURNING\s+.*$`)
	selectPattern      = regexp.MustCompile(`(?is)^\s*(SELECT|WITH)\b`)
	returningDetect    = regexp.MustCompile(`(?is)\bRETURNING\b`)
)

// PostgresDialect passes canonical queries through untouched; the networked
// engine speaks $N natively and honors RETURNING.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) Prepare(text string) (string, bool) {
	return text, selectPattern.MatchString(text) || returningDetect.MatchString(text)
}

func (PostgresDialect) Transactional() bool { return true }

// SQLiteDialect rewrites $N placeholders to ? markers and strips RETURNING
// clauses, because the embedded engine cannot produce rows from a write.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) Prepare(text string) (string, bool) {
	rewritten := returningPattern.ReplaceAllString(text, "")
	rewritten = placeholderPattern.ReplaceAllString(rewritten, "?")
	return rewritten, selectPattern.MatchString(rewritten)
}

func (SQLiteDialect) Transactional() bool { return false }

type queryRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func run(ctx context.Context, q queryRunner, dialect Dialect, text string, args []any) (Result, error) {
	engineText, wantRows := dialect.Prepare(text)

	if wantRows {
		rows, err := q.QueryContext(ctx, engineText, args...)
		if err != nil {
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeQuery, err, "executing query")
		}
		defer rows.Close()

		records, err := scanRecords(rows)
		if err != nil {
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeQuery, err, "scanning rows")
		}
		return Result{Rows: records, RowsAffected: int64(len(records))}, nil
	}

	res, err := q.ExecContext(ctx, engineText, args...)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeQuery, err, "executing statement")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeQuery, err, "reading affected count")
	}
	return Result{RowsAffected: affected}, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// String coerces a column to its text form.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Float coerces a numeric column; drivers disagree on numeric wire types.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}

// Int coerces an integral column.
func (r Record) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// Decimal coerces a money column without float round-tripping where the
// driver already gives us text.
func (r Record) Decimal(key string) decimal.Decimal {
	switch v := r[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		return decimal.Zero
	}
}

// Time coerces a timestamp column. Drivers that hand back text use RFC3339.
func (r Record) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse(time.RFC3339, v)
		return t
	case []byte:
		t, _ := time.Parse(time.RFC3339, string(v))
		return t
	default:
		return time.Time{}
	}
}
