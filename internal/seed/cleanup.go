package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/dberrors"
	"github.com/yigit/fneseed/internal/store"
)

// CleanupOptions controls a cleanup run
type CleanupOptions struct {
	DryRun bool
}

// TableCleanup is the outcome for one table
type TableCleanup struct {
	Table   string `json:"table"`
	Found   int    `json:"found"`
	Deleted int64  `json:"deleted"`
	Missing bool   `json:"missing,omitempty"`
}

// CleanupSummary is the outcome of a cleanup run
type CleanupSummary struct {
	Tag          string         `json:"tag"`
	DryRun       bool           `json:"dryRun"`
	Tables       []TableCleanup `json:"tables"`
	TotalFound   int            `json:"totalFound"`
	TotalDeleted int64          `json:"totalDeleted"`
}

// Cleaner removes every row carrying the seed tag and nothing else
type Cleaner struct {
	store  store.Store
	tag    string
	tables []string
	logger zerolog.Logger
}

// NewCleaner creates a Cleaner over CleanupOrder
func NewCleaner(s store.Store, tag string, lgr zerolog.Logger) *Cleaner {
	return &Cleaner{store: s, tag: tag, tables: CleanupOrder, logger: lgr}
}

// Run counts the tagged rows of each table, children first, and deletes them
// unless opts.DryRun is set. Tables that do not exist yet are reported and
// skipped. A second run finds nothing.
func (c *Cleaner) Run(ctx context.Context, opts CleanupOptions) (*CleanupSummary, error) {
	if c.tag == "" {
		return nil, apperrors.NewInvalidConfigError("refusing to clean up without a seed tag")
	}

	c.logger.Info().Str("tag", c.tag).Bool("dry_run", opts.DryRun).Msg("Cleaning up seeded data")

	summary := &CleanupSummary{Tag: c.tag, DryRun: opts.DryRun}
	filter := store.Tagged(c.tag)

	for _, table := range c.tables {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := TableCleanup{Table: table}
		rows, err := c.store.Select(ctx, table, filter, "id")
		if err != nil {
			if dberrors.IsUndefinedTable(err) {
				c.logger.Warn().Str("table", table).Msg("Table does not exist, skipping")
				result.Missing = true
				summary.Tables = append(summary.Tables, result)
				continue
			}
			return summary, fmt.Errorf("failed to count seeded rows in %s: %w", table, err)
		}
		result.Found = len(rows)
		summary.TotalFound += result.Found

		if !opts.DryRun && result.Found > 0 {
			deleted, err := c.store.Delete(ctx, table, filter)
			if err != nil {
				c.logger.Error().Err(err).Str("table", table).Msg("Cleanup delete failed")
				return summary, fmt.Errorf("failed to delete seeded rows from %s: %w", table, err)
			}
			result.Deleted = deleted
			summary.TotalDeleted += deleted
		}

		c.logger.Info().
			Str("table", table).
			Int("found", result.Found).
			Int64("deleted", result.Deleted).
			Msg("Table cleaned")
		summary.Tables = append(summary.Tables, result)
	}

	c.logger.Info().
		Int("found", summary.TotalFound).
		Int64("deleted", summary.TotalDeleted).
		Bool("dry_run", opts.DryRun).
		Msg("Cleanup finished")
	return summary, nil
}
