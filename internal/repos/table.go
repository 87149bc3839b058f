package repos

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrDuplicate     = errors.New("duplicate key")
	ErrBadIdentifier = errors.New("invalid table or column name")
)

var reIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Row is one table row keyed by column name.
type Row map[string]any

// Filter is a set of column = value conditions joined with AND.
type Filter map[string]any

// TableStore is a row store over named tables. Identifiers are checked
// against a strict pattern; values are always bound as parameters.
type TableStore struct{ DB *sqlx.DB }

func NewTableStore(db *sqlx.DB) *TableStore { return &TableStore{DB: db} }

// Select returns the rows of table matching filter. No columns means all.
func (s *TableStore) Select(ctx context.Context, table string, columns []string, filter Filter) ([]Row, error) {
	if !reIdent.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrBadIdentifier, table)
	}
	cols := "*"
	if len(columns) > 0 {
		for _, c := range columns {
			if !reIdent.MatchString(c) {
				return nil, fmt.Errorf("%w: %q", ErrBadIdentifier, c)
			}
		}
		cols = strings.Join(columns, ", ")
	}

	q := "SELECT " + cols + " FROM " + table
	var args []any
	if len(filter) > 0 {
		keys := sortedKeys(filter)
		conds := make([]string, 0, len(keys))
		for _, k := range keys {
			if !reIdent.MatchString(k) {
				return nil, fmt.Errorf("%w: %q", ErrBadIdentifier, k)
			}
			conds = append(conds, k+" = ?")
			args = append(args, filter[k])
		}
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.DB.QueryxContext(ctx, s.DB.Rebind(q), args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	return collect(rows)
}

// Insert adds row to table and returns the stored row as the database sees
// it. A row without an id gets a fresh UUID.
func (s *TableStore) Insert(ctx context.Context, table string, row Row) ([]Row, error) {
	if !reIdent.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrBadIdentifier, table)
	}
	if len(row) == 0 {
		return nil, errors.New("insert: empty row")
	}

	vals := make(Row, len(row)+1)
	for k, v := range row {
		vals[k] = v
	}
	if id, ok := vals["id"]; !ok || id == nil || id == "" {
		vals["id"] = uuid.NewString()
	}

	keys := sortedKeys(vals)
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if !reIdent.MatchString(k) {
			return nil, fmt.Errorf("%w: %q", ErrBadIdentifier, k)
		}
		args = append(args, vals[k])
	}
	q := "INSERT INTO " + table + " (" + strings.Join(keys, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ") RETURNING *"

	rows, err := s.DB.QueryxContext(ctx, s.DB.Rebind(q), args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	return collect(rows)
}

// Ping reports whether the store is reachable.
func (s *TableStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func collect(rows *sqlx.Rows) ([]Row, error) {
	defer rows.Close()

	var out []Row
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, wrapDBError(err)
		}
		for k, v := range m {
			switch x := v.(type) {
			case []byte:
				m[k] = string(x)
			case [16]byte:
				m[k] = uuid.UUID(x).String()
			}
		}
		out = append(out, Row(m))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return out, nil
}

func wrapDBError(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
