package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	for _, name := range []string{HighPerformance, Average, Struggling, Inactive} {
		_, ok := cfg.Archetype(name)
		assert.True(t, ok, name)
	}
	for _, role := range models.Roles {
		assert.NotEmpty(t, cfg.RoleEngagement[role], role)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.Archetypes[0].Weight = 0.9
	err := cfg.Validate()
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	cfg = Default()
	cfg.Archetypes[1].HealthScore = Range{Min: 90, Max: 10}
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = Default()
	cfg.Temporal.Hourly = cfg.Temporal.Hourly[:23]
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
}

func TestIntensityStaysInUnitInterval(t *testing.T) {
	cfg := Default()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24*365; h += 7 {
		v := cfg.Temporal.Intensity(start.Add(time.Duration(h) * time.Hour))
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestIntensityFollowsTables(t *testing.T) {
	tmp := Temporal{
		Location: "UTC",
		Baseline: 1,
		Hourly:   make([]float64, 24),
		Weekly:   []float64{1, 1, 1, 1, 1, 1, 1},
		Seasons:  []Season{{Name: "all", Months: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, Factor: 0.5}},
	}
	tmp.Hourly[10] = 1
	require.NoError(t, tmp.Validate())

	// Wednesday 10:00 UTC
	at := time.Date(2026, 5, 13, 10, 30, 0, 0, time.UTC)
	assert.InDelta(t, 0.5, tmp.Intensity(at), 1e-9)
	assert.Zero(t, tmp.Intensity(at.Add(time.Hour)))
}

func TestArchetypeFrequencyConverges(t *testing.T) {
	cfg := Default()
	s := random.NewSampler(2024)
	const draws = 10000
	counts := map[string]int{}
	table := cfg.ArchetypeWeights()
	for i := 0; i < draws; i++ {
		counts[random.MustWeightedChoice(s, table).Name]++
	}
	for _, a := range cfg.Archetypes {
		assert.InDelta(t, a.Weight, float64(counts[a.Name])/draws, 0.02, a.Name)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
skip_escape: 0.1
activity_window: 720h
progress:
  base_completion: 0.5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cfg.SkipEscape, 1e-9)
	assert.Equal(t, 720*time.Hour, cfg.ActivityWindow)
	assert.InDelta(t, 0.5, cfg.Progress.BaseCompletion, 1e-9)
	assert.Len(t, cfg.Archetypes, 4, "untouched tables keep their defaults")
}

func TestEngagementUsesRoleTable(t *testing.T) {
	cfg := Default()
	s := random.NewSampler(5)
	for i := 0; i < 500; i++ {
		lvl := cfg.Engagement(s, models.RoleAdmin)
		assert.Contains(t, []models.EngagementLevel{models.EngagementVeryHigh, models.EngagementHigh}, lvl)
	}
}

func TestAttendanceRateFollowsMeetingTag(t *testing.T) {
	assert.Equal(t, Range{80, 100}, Behavior{MeetingAttendance: "excellent"}.AttendanceRate())
	assert.Equal(t, Range{60, 85}, Behavior{MeetingAttendance: "good"}.AttendanceRate())
	assert.Equal(t, Range{30, 65}, Behavior{MeetingAttendance: "poor"}.AttendanceRate())
	assert.Equal(t, Range{30, 65}, Behavior{}.AttendanceRate())

	cfg := Default()
	struggling, ok := cfg.Archetype(Struggling)
	require.True(t, ok)
	inactive, ok := cfg.Archetype(Inactive)
	require.True(t, ok)
	assert.Equal(t, struggling.Behavior.AttendanceRate(), inactive.Behavior.AttendanceRate(),
		"archetypes sharing a tag share the band")
}
