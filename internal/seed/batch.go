package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/store"
)

// DefaultBatchSize is the chunk size used when none is configured
const DefaultBatchSize = 100

// Record is a typed entity that can be written through the batcher and merged
// with the row the store returns.
type Record[T any] interface {
	Row() store.Row
	Stored(store.Row) (T, error)
}

// Batcher inserts records in fixed-size chunks and stamps every row with the
// run's seed tag.
type Batcher struct {
	store  store.Store
	tag    string
	size   int
	delay  time.Duration
	logger zerolog.Logger
}

// NewBatcher creates a Batcher. size <= 0 falls back to DefaultBatchSize.
func NewBatcher(s store.Store, tag string, size int, delay time.Duration, lgr zerolog.Logger) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batcher{store: s, tag: tag, size: size, delay: delay, logger: lgr}
}

// Tag returns the seed tag written on every row
func (b *Batcher) Tag() string {
	return b.tag
}

// InsertAll writes records to table chunk by chunk and returns them with their
// stored ids, in input order. The first failing chunk aborts the call: the
// error says how many rows landed before it and no records are returned.
func InsertAll[T Record[T]](ctx context.Context, b *Batcher, table string, records []T) ([]T, error) {
	out := make([]T, 0, len(records))
	total := len(records)
	if total == 0 {
		return out, nil
	}

	for start, chunk := 0, 1; start < total; start, chunk = start+b.size, chunk+1 {
		end := start + b.size
		if end > total {
			end = total
		}

		rows := make([]store.Row, 0, end-start)
		for _, rec := range records[start:end] {
			rows = append(rows, b.stamp(rec.Row()))
		}

		stored, err := b.store.Insert(ctx, table, rows)
		if err == nil && len(stored) != len(rows) {
			err = fmt.Errorf("%w: store returned %d rows for %d inserted", apperrors.ErrUnexpectedRow, len(stored), len(rows))
		}
		if err != nil {
			b.logger.Error().Err(err).Str("table", table).Int("chunk", chunk).Int("inserted", start).Msg("Batch insert failed")
			return nil, apperrors.NewBatchInsertError(table, chunk, start, err)
		}

		for i, row := range stored {
			rec, err := records[start+i].Stored(row)
			if err != nil {
				return nil, apperrors.NewBatchInsertError(table, chunk, start, err)
			}
			out = append(out, rec)
		}

		b.logger.Info().
			Str("table", table).
			Int("inserted", end).
			Int("total", total).
			Msg(progressBar(end, total))

		if end < total && b.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewBatchInsertError(table, chunk+1, end, ctx.Err())
			case <-time.After(b.delay):
			}
		}
	}

	return out, nil
}

// stamp adds the seed tag and the test_data marker to a row
func (b *Batcher) stamp(row store.Row) store.Row {
	row[store.TagColumn] = b.tag

	meta, ok := row["metadata"].(map[string]interface{})
	if !ok || meta == nil {
		meta = map[string]interface{}{}
	}
	meta["test_data"] = true
	meta["seed_tag"] = b.tag
	row["metadata"] = meta
	return row
}

func progressBar(done, total int) string {
	const width = 20
	filled := width
	pct := 100
	if total > 0 {
		filled = done * width / total
		pct = done * 100 / total
	}
	return fmt.Sprintf("[%s%s] %d%% (%d/%d)",
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct, done, total)
}
