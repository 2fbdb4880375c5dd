// Package store is the seeder's only view of the target database: chunk insert
// returning rows, filtered select, filtered delete and a connectivity probe.
package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

// TagColumn marks a row as seeder output. Cleanup matches on it and nothing else.
const TagColumn = "seed_tag"

// Row is one record keyed by column name
type Row map[string]any

// Filter restricts select and delete to rows whose Column equals Value.
// The zero Filter matches every row.
type Filter struct {
	Column string
	Value  any
}

// Tagged returns the filter that matches rows written with the given seed tag
func Tagged(tag string) Filter {
	return Filter{Column: TagColumn, Value: tag}
}

// IsZero reports whether the filter matches everything
func (f Filter) IsZero() bool {
	return f.Column == ""
}

// Store is implemented by PostgresStore and MemoryStore
type Store interface {
	// Insert writes rows and returns them as stored, including the "id" the store
	// assigned or kept. Returned rows are in input order.
	Insert(ctx context.Context, table string, rows []Row) ([]Row, error)
	Select(ctx context.Context, table string, filter Filter, columns ...string) ([]Row, error)
	Delete(ctx context.Context, table string, filter Filter) (int64, error)
	Probe(ctx context.Context) error
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkIdentifiers rejects table or column names that could not have come from
// the seeder's own schema.
func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !identifierPattern.MatchString(n) {
			return apperrors.NewBadRequestError(fmt.Sprintf("invalid identifier %q", n))
		}
	}
	return nil
}

// Columns returns the row's keys in a stable order
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Int64 reads an integer column. Stores hand identifiers back as text, integers
// or json numbers, so every form is accepted.
func (r Row) Int64(col string) (int64, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: column %q missing", apperrors.ErrUnexpectedRow, col)
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: column %q is not an integer: %v", apperrors.ErrUnexpectedRow, col, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: column %q has type %T", apperrors.ErrUnexpectedRow, col, v)
	}
}

// UUID reads a uuid column in text or binary form
func (r Row) UUID(col string) (uuid.UUID, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return uuid.Nil, fmt.Errorf("%w: column %q missing", apperrors.ErrUnexpectedRow, col)
	}
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		id, err := uuid.Parse(x)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: column %q is not a uuid: %v", apperrors.ErrUnexpectedRow, col, err)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("%w: column %q has type %T", apperrors.ErrUnexpectedRow, col, v)
	}
}

// valueKey normalizes a column value for equality checks across id forms
func valueKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *int64:
		if x == nil {
			return ""
		}
		return strconv.FormatInt(*x, 10)
	case *uuid.UUID:
		if x == nil {
			return ""
		}
		return x.String()
	case [16]byte:
		return uuid.UUID(x).String()
	default:
		return fmt.Sprint(x)
	}
}
