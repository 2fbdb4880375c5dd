package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/auth"
	"github.com/yigit/fneseed/internal/pkg/filestorage"
	"github.com/yigit/fneseed/internal/pkg/random"
	"github.com/yigit/fneseed/internal/safety"
	"github.com/yigit/fneseed/internal/scenario"
	"github.com/yigit/fneseed/internal/store"
)

// ReportWriter persists the report of a finished run
type ReportWriter interface {
	SaveReport(name string, data []byte) (string, error)
}

// Options configures a pipeline
type Options struct {
	Tag        string
	Volumes    config.Volumes
	Scenario   *scenario.Config
	Seed       uint64
	BatchSize  int
	BatchDelay time.Duration

	// Password is hashed once per run unless PasswordHash is already set
	Password     string
	PasswordHash string

	// Clock anchors every generated date; defaults to time.Now
	Clock func() time.Time
}

// RunOptions controls the gated entry point
type RunOptions struct {
	Target      safety.Target
	SkipCleanup bool
	Confirm     safety.ConfirmOptions
}

// Pipeline runs the five phases strictly in order. Each phase receives the
// stored output of the phases before it and nothing else.
type Pipeline struct {
	store   store.Store
	gate    *safety.Gate
	reports ReportWriter
	opts    Options
	logger  zerolog.Logger
}

// NewPipeline creates a Pipeline. reports may be nil to skip writing artifacts.
func NewPipeline(s store.Store, gate *safety.Gate, reports ReportWriter, opts Options, lgr zerolog.Logger) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Scenario == nil {
		opts.Scenario = scenario.Default()
	}
	return &Pipeline{store: s, gate: gate, reports: reports, opts: opts, logger: lgr}
}

// Execute is the full run: safety gate, confirmed cleanup of the previous
// run's rows, then generation. Nothing is written before the gate passes, and
// nothing is deleted for a run whose volumes could not be generated.
func (p *Pipeline) Execute(ctx context.Context, ro RunOptions) (*Report, error) {
	if p.gate == nil {
		return nil, errors.New("pipeline has no safety gate")
	}
	hash, err := p.prepare()
	if err != nil {
		return nil, err
	}
	if err := p.gate.Check(ctx, ro.Target); err != nil {
		return nil, err
	}

	var cleanup *CleanupSummary
	if ro.SkipCleanup {
		p.logger.Warn().Str("tag", p.opts.Tag).Msg("Skipping cleanup, rows from earlier runs stay in place")
	} else {
		if err := p.gate.ConfirmDestructive(ctx, ro.Target, ro.Confirm); err != nil {
			return nil, err
		}
		summary, err := NewCleaner(p.store, p.opts.Tag, p.logger).Run(ctx, CleanupOptions{})
		if err != nil {
			return nil, fmt.Errorf("cleanup before seeding failed: %w", err)
		}
		cleanup = summary
	}

	return p.run(ctx, hash, cleanup)
}

// Clean removes the rows of this pipeline's tag behind the same gate as
// Execute. A dry run only counts and does not ask for confirmation.
func (p *Pipeline) Clean(ctx context.Context, ro RunOptions, opts CleanupOptions) (*CleanupSummary, error) {
	if p.gate == nil {
		return nil, errors.New("pipeline has no safety gate")
	}
	if err := p.gate.Check(ctx, ro.Target); err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := p.gate.ConfirmDestructive(ctx, ro.Target, ro.Confirm); err != nil {
			return nil, err
		}
	}
	return NewCleaner(p.store, p.opts.Tag, p.logger).Run(ctx, opts)
}

// Run generates the dataset without gate or cleanup
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	hash, err := p.prepare()
	if err != nil {
		return nil, err
	}
	return p.run(ctx, hash, nil)
}

// prepare checks the volumes and hashes the shared password
func (p *Pipeline) prepare() (string, error) {
	if err := p.opts.Volumes.Validate(); err != nil {
		return "", err
	}
	if p.opts.PasswordHash != "" {
		return p.opts.PasswordHash, nil
	}
	hash, err := auth.HashPassword(p.opts.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash seeded account password: %w", err)
	}
	return hash, nil
}

func (p *Pipeline) run(ctx context.Context, hash string, cleanup *CleanupSummary) (*Report, error) {
	started := p.opts.Clock()
	rnd := random.NewSampler(p.opts.Seed)
	batch := NewBatcher(p.store, p.opts.Tag, p.opts.BatchSize, p.opts.BatchDelay, p.logger)
	gen := NewGenerator(batch, p.opts.Scenario, rnd, started, hash, p.logger)
	vol := p.opts.Volumes

	p.logger.Info().
		Str("tag", p.opts.Tag).
		Uint64("seed", rnd.Seed()).
		Int("users", vol.Users).
		Int("schools", vol.Schools).
		Msg("Starting seed run")

	var res Results
	var err error

	if res.Org, err = gen.Organizations(ctx, vol); err != nil {
		return nil, p.fail("organizations", err)
	}
	if res.Users, err = gen.Users(ctx, res.Org, vol); err != nil {
		return nil, p.fail("users", err)
	}
	if res.Courses, err = gen.Courses(ctx, res.Org, res.Users, vol); err != nil {
		return nil, p.fail("courses", err)
	}
	if res.Activity, err = gen.Activity(ctx, res.Org, res.Users, vol); err != nil {
		return nil, p.fail("activity", err)
	}
	if res.Progress, err = gen.Progress(ctx, res.Users, res.Courses, vol); err != nil {
		return nil, p.fail("progress", err)
	}

	report := BuildReport(p.opts.Tag, rnd.Seed(), vol, started, p.opts.Clock(), res)
	report.Cleanup = cleanup
	report.Validation, report.Warnings = Validate(ctx, p.store, p.opts.Tag, vol, res)
	if report.Warnings == nil {
		report.Warnings = []string{}
	}
	for _, w := range report.Warnings {
		p.logger.Warn().Str("check", "validation").Msg(w)
	}

	if p.reports != nil {
		data, err := report.JSON()
		if err != nil {
			return report, err
		}
		path, err := p.reports.SaveReport(filestorage.ReportName(report.FinishedAt), data)
		if err != nil {
			return report, fmt.Errorf("failed to save report: %w", err)
		}
		report.ArtifactPath = path
	}

	p.logger.Info().
		Float64("duration_seconds", report.DurationSeconds).
		Int("warnings", len(report.Warnings)).
		Float64("completion_rate", report.CompletionRate).
		Str("report", report.ArtifactPath).
		Msg("Seed run finished")
	return report, nil
}

func (p *Pipeline) fail(phase string, err error) error {
	p.logger.Error().Err(err).Str("phase", phase).Msg("Seed run aborted")
	return fmt.Errorf("%s phase: %w", phase, err)
}
