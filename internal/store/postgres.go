package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/yigit/fneseed/internal/db"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/dberrors"
)

// profileEmailConstraint is the unique index on profiles.email
const profileEmailConstraint = "profiles_email_key"

// PostgresStore implements Store on a pgx pool
type PostgresStore struct {
	db     *db.PostgresDB
	logger zerolog.Logger
}

// NewPostgresStore wraps an open connection pool
func NewPostgresStore(database *db.PostgresDB, lgr zerolog.Logger) *PostgresStore {
	return &PostgresStore{db: database, logger: lgr}
}

// Insert writes all rows in one transaction. Each row is its own statement in a
// pgx batch so returned ids line up with the input order.
func (s *PostgresStore) Insert(ctx context.Context, table string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	columns := rows[0].Columns()
	if err := checkIdentifiers(append([]string{table}, columns...)...); err != nil {
		return nil, err
	}

	out := make([]Row, len(rows))
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, row := range rows {
			values := make([]interface{}, len(columns))
			for j, col := range columns {
				values[j] = row[col]
			}

			query, args, err := squirrel.Insert(table).
				Columns(columns...).
				Values(values...).
				Suffix("RETURNING id::text").
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert for %s: %w", table, err)
			}

			batch.Queue(query, args...).QueryRow(func(r pgx.Row) error {
				var id string
				if err := r.Scan(&id); err != nil {
					return err
				}
				stored := row.Clone()
				stored["id"] = id
				out[i] = stored
				return nil
			})
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, profileEmailConstraint) {
			return nil, apperrors.NewCustomError(err,
				"a generated email already exists in profiles; clean up the earlier run or use another tag").
				WithCode("DUPLICATE_EMAIL")
		}
		return nil, err
	}
	return out, nil
}

// Select returns the matching rows. No columns means all columns.
func (s *PostgresStore) Select(ctx context.Context, table string, filter Filter, columns ...string) ([]Row, error) {
	if len(columns) == 0 {
		columns = []string{"*"}
	} else if err := checkIdentifiers(columns...); err != nil {
		return nil, err
	}
	if err := checkIdentifiers(table); err != nil {
		return nil, err
	}

	builder := squirrel.Select(columns...).From(table).PlaceholderFormat(squirrel.Dollar)
	if !filter.IsZero() {
		builder = builder.Where(squirrel.Eq{filter.Column: filter.Value})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select for %s: %w", table, err)
	}

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", table, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

// Delete removes matching rows. An empty filter is refused so a bug cannot
// truncate a table.
func (s *PostgresStore) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	if filter.IsZero() {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("refusing unfiltered delete on %s", table))
	}
	if err := checkIdentifiers(table, filter.Column); err != nil {
		return 0, err
	}

	query, args, err := squirrel.Delete(table).
		Where(squirrel.Eq{filter.Column: filter.Value}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete for %s: %w", table, err)
	}

	tag, err := s.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// Probe pings the pool and runs a trivial read
func (s *PostgresStore) Probe(ctx context.Context) error {
	if err := s.db.Pool.Ping(ctx); err != nil {
		return err
	}
	var one int
	if err := s.db.Pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	s.logger.Debug().Msg("Store probe succeeded")
	return nil
}
