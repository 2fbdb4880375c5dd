package seed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/filestorage"
	"github.com/yigit/fneseed/internal/safety"
	"github.com/yigit/fneseed/internal/store"
)

func sandboxTarget() safety.Target {
	return safety.Target{
		URL:         "postgres://postgres:pw@db.sandboxref.supabase.co:5432/postgres",
		ServiceKey:  "service-key",
		Environment: "sandbox",
	}
}

func newTestPipeline(t *testing.T, mem *store.MemoryStore, confirmer safety.Confirmer, reports ReportWriter) *Pipeline {
	t.Helper()
	gate := safety.NewGate(
		[]string{config.ProductionProjectRef + ".supabase.co"},
		[]string{"sandbox", "development", "test"},
		mem, confirmer, zerolog.Nop(),
	)
	return NewPipeline(mem, gate, reports, Options{
		Tag:          testTag,
		Volumes:      testVolumes(),
		Seed:         99,
		BatchSize:    20,
		PasswordHash: "$2a$12$hash",
		Clock:        func() time.Time { return testNow },
	}, zerolog.Nop())
}

func TestPipelineEndToEnd(t *testing.T) {
	mem := store.NewMemoryStore()
	reports, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	confirmer := &safety.StaticConfirmer{Answer: true}

	report, err := newTestPipeline(t, mem, confirmer, reports).Execute(context.Background(), RunOptions{Target: sandboxTarget()})
	require.NoError(t, err)

	assert.Equal(t, 1, confirmer.Asked)
	assert.Equal(t, 2, mem.Len(TableSchools))
	assert.Equal(t, 4, mem.Len(TableGenerations))
	assert.Equal(t, 8, mem.Len(TableCommunities))
	assert.Equal(t, 50, mem.Len(TableProfiles))
	assert.Equal(t, 8, mem.Len(TableCommunityLeaders))

	assert.Empty(t, report.Warnings)
	for _, check := range report.Validation {
		assert.Equal(t, check.Expected, check.Actual, check.Table)
	}
	assert.Equal(t, 8, report.UsersByRole["lider_comunidad"])
	assert.Equal(t, 32, report.UsersByRole["estudiante"])

	scenarios := 0
	for _, n := range report.CommunitiesByScenario {
		scenarios += n
	}
	assert.Equal(t, 8, scenarios)

	buckets := 0
	for _, n := range report.CommunitiesByHealth {
		buckets += n
	}
	assert.Equal(t, 8, buckets)

	require.NotNil(t, report.Cleanup)
	assert.Zero(t, report.Cleanup.TotalFound, "first run starts from an empty sandbox")

	require.NotEmpty(t, report.ArtifactPath)
	latest, err := reports.LatestReport()
	require.NoError(t, err)
	data, err := reports.ReadReport(latest.Filename)
	require.NoError(t, err)

	var saved Report
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, testTag, saved.Tag)
	assert.Equal(t, uint64(99), saved.Seed)
	assert.Equal(t, 50, saved.Volumes.Users)
}

func TestPipelineReplacesPreviousRun(t *testing.T) {
	mem := store.NewMemoryStore()
	p := newTestPipeline(t, mem, nil, nil)
	opts := RunOptions{Target: sandboxTarget(), Confirm: safety.ConfirmOptions{SkipConfirmation: true}}

	_, err := p.Execute(context.Background(), opts)
	require.NoError(t, err)
	report, err := p.Execute(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 50, mem.Len(TableProfiles))
	assert.Equal(t, 2, mem.Len(TableSchools))
	require.NotNil(t, report.Cleanup)
	assert.Positive(t, report.Cleanup.TotalDeleted)
	assert.Empty(t, report.Warnings)
}

func TestPipelineSafetyFailuresWriteNothing(t *testing.T) {
	cases := map[string]struct {
		target    func() safety.Target
		confirmer safety.Confirmer
		probeErr  error
		want      error
	}{
		"blacklisted host": {
			target: func() safety.Target {
				tg := sandboxTarget()
				tg.URL = "https://" + config.ProductionProjectRef + ".supabase.co"
				return tg
			},
			confirmer: &safety.StaticConfirmer{Answer: true},
			want:      apperrors.ErrBlacklistedTarget,
		},
		"production environment": {
			target: func() safety.Target {
				tg := sandboxTarget()
				tg.Environment = "production"
				return tg
			},
			confirmer: &safety.StaticConfirmer{Answer: true},
			want:      apperrors.ErrInvalidEnvironment,
		},
		"unreachable store": {
			target:    sandboxTarget,
			confirmer: &safety.StaticConfirmer{Answer: true},
			probeErr:  errors.New("connection refused"),
			want:      apperrors.ErrConnectivity,
		},
		"rejected confirmation": {
			target:    sandboxTarget,
			confirmer: &safety.StaticConfirmer{Answer: false},
			want:      apperrors.ErrConfirmationRejected,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			mem.FailProbe(tc.probeErr)

			_, err := newTestPipeline(t, mem, tc.confirmer, nil).Execute(context.Background(), RunOptions{Target: tc.target()})
			assert.ErrorIs(t, err, apperrors.ErrSafetyViolation)
			assert.ErrorIs(t, err, tc.want)
			for _, table := range CleanupOrder {
				assert.Zero(t, mem.Len(table), table)
			}
		})
	}
}

func TestPipelineStopsAtFailingPhase(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.OnInsert(func(table string, _ int) error {
		if table == TableCourses {
			return errors.New("disk full")
		}
		return nil
	})

	_, err := newTestPipeline(t, mem, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBatchInsert)
	assert.Contains(t, err.Error(), "courses phase")

	assert.Equal(t, 50, mem.Len(TableProfiles))
	assert.Zero(t, mem.Len(TableActivities), "later phases never run")
	assert.Zero(t, mem.Len(TableCompletions))
}

func TestPipelineRejectsUndersizedBudget(t *testing.T) {
	p := newTestPipeline(t, store.NewMemoryStore(), nil, nil)
	p.opts.Volumes.Users = 10

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestPipelineUndersizedBudgetKeepsPreviousRun(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	confirmer := &safety.StaticConfirmer{Answer: true}
	p := newTestPipeline(t, mem, confirmer, nil)

	_, err := p.Execute(ctx, RunOptions{Target: sandboxTarget()})
	require.NoError(t, err)
	require.Equal(t, 1, confirmer.Asked)

	p.opts.Volumes.Users = 10
	_, err = p.Execute(ctx, RunOptions{Target: sandboxTarget()})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	assert.Equal(t, 1, confirmer.Asked, "no confirmation for a run that cannot start")
	assert.Equal(t, 50, mem.Len(TableProfiles), "earlier dataset is left in place")
	assert.Equal(t, 2, mem.Len(TableSchools))
}

func TestPipelineIsReproducibleFromSeed(t *testing.T) {
	first, err := newTestPipeline(t, store.NewMemoryStore(), nil, nil).Run(context.Background())
	require.NoError(t, err)
	second, err := newTestPipeline(t, store.NewMemoryStore(), nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.CommunitiesByScenario, second.CommunitiesByScenario)
	assert.Equal(t, first.UsersBySchool, second.UsersBySchool)
}

func TestCleanerOnlyRemovesTaggedRows(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	_, err := newTestPipeline(t, mem, nil, nil).Run(ctx)
	require.NoError(t, err)

	_, err = mem.Insert(ctx, TableProfiles, []store.Row{
		{"email": "real.user@fne.cl"},
		{"email": "other.run@fne.cl", store.TagColumn: "another-tag"},
	})
	require.NoError(t, err)

	cleaner := NewCleaner(mem, testTag, zerolog.Nop())

	dry, err := cleaner.Run(ctx, CleanupOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 50, tableResult(t, dry, TableProfiles).Found)
	assert.Zero(t, dry.TotalDeleted)
	assert.Equal(t, 52, mem.Len(TableProfiles))

	summary, err := cleaner.Run(ctx, CleanupOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(summary.TotalFound), summary.TotalDeleted)
	assert.Equal(t, 2, mem.Len(TableProfiles), "untagged and foreign-tag rows survive")
	for _, table := range CleanupOrder {
		if table != TableProfiles {
			assert.Zero(t, mem.Len(table), table)
		}
	}

	again, err := cleaner.Run(ctx, CleanupOptions{})
	require.NoError(t, err)
	assert.Zero(t, again.TotalDeleted, "second cleanup finds nothing")
}

func TestPipelineCleanIsGated(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	confirmer := &safety.StaticConfirmer{Answer: false}
	p := newTestPipeline(t, mem, confirmer, nil)
	_, err := p.Run(ctx)
	require.NoError(t, err)

	dry, err := p.Clean(ctx, RunOptions{Target: sandboxTarget()}, CleanupOptions{DryRun: true})
	require.NoError(t, err)
	assert.Zero(t, confirmer.Asked, "dry run never prompts")
	assert.Positive(t, dry.TotalFound)

	_, err = p.Clean(ctx, RunOptions{Target: sandboxTarget()}, CleanupOptions{})
	assert.ErrorIs(t, err, apperrors.ErrConfirmationRejected)
	assert.Equal(t, 50, mem.Len(TableProfiles))

	confirmer.Answer = true
	summary, err := p.Clean(ctx, RunOptions{Target: sandboxTarget()}, CleanupOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(dry.TotalFound), summary.TotalDeleted)
	assert.Zero(t, mem.Len(TableProfiles))
}

func TestCleanerRequiresTag(t *testing.T) {
	_, err := NewCleaner(store.NewMemoryStore(), "", zerolog.Nop()).Run(context.Background(), CleanupOptions{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestHealthBucket(t *testing.T) {
	assert.Equal(t, HealthExcellent, HealthBucket(80))
	assert.Equal(t, HealthGood, HealthBucket(79))
	assert.Equal(t, HealthGood, HealthBucket(60))
	assert.Equal(t, HealthStruggling, HealthBucket(40))
	assert.Equal(t, HealthCritical, HealthBucket(39))
}

func tableResult(t *testing.T, s *CleanupSummary, table string) TableCleanup {
	t.Helper()
	for _, r := range s.Tables {
		if r.Table == table {
			return r
		}
	}
	t.Fatalf("table %s missing from summary", table)
	return TableCleanup{}
}
