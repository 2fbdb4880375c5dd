// Package scenario holds the weighted tables that drive every generator:
// community archetypes, activity mixes, engagement distributions and the
// temporal intensity curves.
package scenario

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
)

// Archetype names
const (
	HighPerformance = "highPerformance"
	Average         = "average"
	Struggling      = "struggling"
	Inactive        = "inactive"
)

// Range is an inclusive numeric interval
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether v lies in the range
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Behavior tags describe how an archetype's members interact
type Behavior struct {
	MessageFrequency  string `yaml:"message_frequency" json:"messageFrequency"`   // high, moderate, low
	DocumentSharing   string `yaml:"document_sharing" json:"documentSharing"`     // frequent, occasional, rare
	MeetingAttendance string `yaml:"meeting_attendance" json:"meetingAttendance"` // excellent, good, poor
	PeerMentoring     string `yaml:"peer_mentoring" json:"peerMentoring"`         // active, limited, none
}

// attendanceRates maps a meeting-attendance tag to the attendance percentages
// a meeting of that community reports
var attendanceRates = map[string]Range{
	"excellent": {80, 100},
	"good":      {60, 85},
}

var defaultAttendanceRate = Range{30, 65}

// AttendanceRate returns the attendance band for the MeetingAttendance tag.
// Unknown tags and "poor" share the lowest band.
func (b Behavior) AttendanceRate() Range {
	if r, ok := attendanceRates[b.MeetingAttendance]; ok {
		return r
	}
	return defaultAttendanceRate
}

// Archetype is a named community-health profile
type Archetype struct {
	Name               string   `yaml:"name" json:"name"`
	Weight             float64  `yaml:"weight" json:"weight"`
	CompletionRate     Range    `yaml:"completion_rate" json:"completionRate"`
	DailyActivity      Range    `yaml:"daily_activity" json:"dailyActivity"`
	CollaborationIndex Range    `yaml:"collaboration_index" json:"collaborationIndex"`
	HealthScore        Range    `yaml:"health_score" json:"healthScore"`
	Engagement         Range    `yaml:"engagement" json:"engagement"`
	CrossCommunity     Range    `yaml:"cross_community" json:"crossCommunity"`
	Behavior           Behavior `yaml:"behavior" json:"behavior"`
}

// Config bundles every table the generators read
type Config struct {
	Archetypes          []Archetype                     `yaml:"archetypes"`
	ActivityTypeWeights map[models.ActivityType]float64 `yaml:"activity_type_weights"`
	Temporal            Temporal                        `yaml:"temporal"`
	Progress            Progress                        `yaml:"progress"`
	ActivityWindow      time.Duration                   `yaml:"activity_window"`
	SkipEscape          float64                         `yaml:"skip_escape"`

	// Built in code only; weighted tables are not overridable from YAML
	RoleEngagement map[models.RoleType][]random.Weighted[models.EngagementLevel] `yaml:"-"`
}

// Progress holds the completion model's constants
type Progress struct {
	BaseCompletion       float64                            `yaml:"base_completion"`
	MinProbability       float64                            `yaml:"min_probability"`
	MaxProbability       float64                            `yaml:"max_probability"`
	EngagementMultiplier map[models.EngagementLevel]float64 `yaml:"engagement_multiplier"`
	MotivationMultiplier map[models.MotivationLevel]float64 `yaml:"motivation_multiplier"`
	SubmissionShare      Range                              `yaml:"submission_share"`
}

// Archetype returns the archetype with the given name
func (c *Config) Archetype(name string) (Archetype, bool) {
	for _, a := range c.Archetypes {
		if a.Name == name {
			return a, true
		}
	}
	return Archetype{}, false
}

// ArchetypeWeights returns the archetype selection table
func (c *Config) ArchetypeWeights() []random.Weighted[Archetype] {
	out := make([]random.Weighted[Archetype], len(c.Archetypes))
	for i, a := range c.Archetypes {
		out[i] = random.W(a, a.Weight)
	}
	return out
}

// Engagement draws an engagement level for a role
func (c *Config) Engagement(s *random.Sampler, role models.RoleType) models.EngagementLevel {
	table, ok := c.RoleEngagement[role]
	if !ok || len(table) == 0 {
		return models.EngagementMedium
	}
	return random.MustWeightedChoice(s, table)
}

// Validate checks the tables are usable
func (c *Config) Validate() error {
	if len(c.Archetypes) == 0 {
		return apperrors.NewInvalidConfigError("scenario has no archetypes")
	}

	total := 0.0
	for _, a := range c.Archetypes {
		if a.Weight < 0 {
			return apperrors.NewInvalidConfigError(fmt.Sprintf("archetype %s has a negative weight", a.Name))
		}
		total += a.Weight
		for label, r := range map[string]Range{
			"completion_rate":     a.CompletionRate,
			"collaboration_index": a.CollaborationIndex,
			"health_score":        a.HealthScore,
			"engagement":          a.Engagement,
			"cross_community":     a.CrossCommunity,
		} {
			if r.Min > r.Max || r.Min < 0 || r.Max > 100 {
				return apperrors.NewInvalidConfigError(fmt.Sprintf("archetype %s has an invalid %s range %d-%d", a.Name, label, r.Min, r.Max))
			}
		}
		if a.DailyActivity.Min > a.DailyActivity.Max {
			return apperrors.NewInvalidConfigError(fmt.Sprintf("archetype %s has an invalid daily_activity range", a.Name))
		}
	}
	if math.Abs(total-1.0) > 1e-6 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("archetype weights sum to %.4f, want 1.0", total))
	}

	if len(c.ActivityTypeWeights) == 0 {
		return apperrors.NewInvalidConfigError("scenario has no activity type weights")
	}

	if c.Progress.MinProbability > c.Progress.MaxProbability {
		return apperrors.NewInvalidConfigError("progress min_probability exceeds max_probability")
	}

	return c.Temporal.Validate()
}

// Load returns the default scenario overlaid with the YAML file at path, if any
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
