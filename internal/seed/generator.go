// Package seed generates the synthetic sandbox dataset: organizations, users,
// courses, community activity and learning progress, in that order.
package seed

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/fneseed/internal/pkg/random"
	"github.com/yigit/fneseed/internal/scenario"
)

// Tables written by the generator
const (
	TableSchools          = "schools"
	TableGenerations      = "generations"
	TableCommunities      = "growth_communities"
	TableProfiles         = "profiles"
	TableUserRoles        = "user_roles"
	TableCommunityLeaders = "community_leaders"
	TableCourses          = "courses"
	TableEnrollments      = "course_enrollments"
	TableAssignments      = "assignments"
	TableActivities       = "activity_feed"
	TableParticipants     = "activity_participants"
	TableCompletions      = "course_completions"
	TableTimeTracking     = "user_course_time"
	TableSessions         = "user_sessions"
	TableSubmissions      = "assignment_submissions"
)

// CleanupOrder lists the tables children first so foreign keys never block a delete
var CleanupOrder = []string{
	TableSubmissions,
	TableSessions,
	TableTimeTracking,
	TableCompletions,
	TableParticipants,
	TableActivities,
	TableAssignments,
	TableEnrollments,
	TableCourses,
	TableCommunityLeaders,
	TableUserRoles,
	TableProfiles,
	TableCommunities,
	TableGenerations,
	TableSchools,
}

// Skip records one entity the generator could not build and moved past
type Skip struct {
	Phase  string `json:"phase"`
	Reason string `json:"reason"`
	Ref    string `json:"ref,omitempty"`
}

// Generator builds each phase's entities and persists them through the batcher
type Generator struct {
	batch        *Batcher
	scenario     *scenario.Config
	rnd          *random.Sampler
	now          time.Time
	passwordHash string
	logger       zerolog.Logger
}

// NewGenerator creates a Generator. now anchors every generated date;
// passwordHash is shared by all seeded accounts.
func NewGenerator(b *Batcher, sc *scenario.Config, rnd *random.Sampler, now time.Time, passwordHash string, lgr zerolog.Logger) *Generator {
	return &Generator{
		batch:        b,
		scenario:     sc,
		rnd:          rnd,
		now:          now,
		passwordHash: passwordHash,
		logger:       lgr,
	}
}

func (g *Generator) skip(phase, reason, ref string) Skip {
	g.logger.Warn().Str("phase", phase).Str("reason", reason).Str("ref", ref).Msg("Skipping record")
	return Skip{Phase: phase, Reason: reason, Ref: ref}
}

func (g *Generator) daysAgo(min, max int) time.Time {
	return g.now.Add(-time.Duration(g.rnd.IntBetween(min, max)) * 24 * time.Hour)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
