package seed

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
)

const phaseProgress = "progress"

// Final scores of completed courses stay in this band
const (
	MinFinalScore = 60
	MaxFinalScore = 100
)

// SkipNotDueYet marks a submission that would land after the pipeline clock
const SkipNotDueYet = "submission_not_due_yet"

// levelRange maps an engagement level to an inclusive int range
type levelRange map[models.EngagementLevel][2]int

func (r levelRange) draw(s *random.Sampler, level models.EngagementLevel) int {
	b, ok := r[level]
	if !ok {
		b = r[models.EngagementMedium]
	}
	return s.IntBetween(b[0], b[1])
}

var (
	scoreBonus = levelRange{
		models.EngagementVeryHigh: {10, 20},
		models.EngagementHigh:     {5, 15},
		models.EngagementMedium:   {0, 10},
		models.EngagementLow:      {-10, 5},
		models.EngagementVeryLow:  {-15, 0},
	}
	partialProgress = levelRange{
		models.EngagementVeryHigh: {60, 95},
		models.EngagementHigh:     {45, 85},
		models.EngagementMedium:   {25, 70},
		models.EngagementLow:      {10, 45},
		models.EngagementVeryLow:  {0, 25},
	}
	streakDays = levelRange{
		models.EngagementVeryHigh: {7, 30},
		models.EngagementHigh:     {3, 14},
		models.EngagementMedium:   {1, 7},
		models.EngagementLow:      {0, 3},
		models.EngagementVeryLow:  {0, 1},
	}
	sessionMinutes = levelRange{
		models.EngagementVeryHigh: {45, 120},
		models.EngagementHigh:     {30, 90},
		models.EngagementMedium:   {20, 60},
		models.EngagementLow:      {10, 40},
		models.EngagementVeryLow:  {5, 20},
	}
	// days relative to the due date; negative is early
	submissionOffsetDays = levelRange{
		models.EngagementVeryHigh: {-5, -1},
		models.EngagementHigh:     {-3, 0},
		models.EngagementMedium:   {-2, 2},
		models.EngagementLow:      {-1, 5},
		models.EngagementVeryLow:  {0, 10},
	}
	submissionAdjustment = map[models.EngagementLevel]int{
		models.EngagementVeryHigh: 15,
		models.EngagementHigh:     8,
		models.EngagementMedium:   0,
		models.EngagementLow:      -10,
		models.EngagementVeryLow:  -20,
	}
	// study time as a share of the course's estimated hours
	studyTimeShare = map[models.EngagementLevel][2]float64{
		models.EngagementVeryHigh: {1.1, 1.4},
		models.EngagementHigh:     {0.9, 1.2},
		models.EngagementMedium:   {0.8, 1.0},
		models.EngagementLow:      {0.6, 0.9},
		models.EngagementVeryLow:  {0.5, 0.8},
	}
)

// sessionsPerEnrollment caps the session log relative to the enrollment count
const sessionsPerEnrollment = 8

// ProgressResult holds the stored learning history
type ProgressResult struct {
	Completions  []models.Completion
	TimeTracking []models.TimeTracking
	Sessions     []models.Session
	Submissions  []models.Submission
	Skipped      []Skip
}

// CompletionRate is the share of enrollments that ended in a completion, in percent
func (r *ProgressResult) CompletionRate(enrollments int) float64 {
	if enrollments == 0 {
		return 0
	}
	return round1(float64(len(r.Completions)) * 100 / float64(enrollments))
}

// AverageFinalScore averages completion scores
func (r *ProgressResult) AverageFinalScore() float64 {
	if len(r.Completions) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range r.Completions {
		sum += c.FinalScore
	}
	return round1(sum / float64(len(r.Completions)))
}

// Progress simulates completions, time tracking, study sessions and assignment
// submissions for every enrollment.
func (g *Generator) Progress(ctx context.Context, users *UserResult, courses *CourseResult, vol config.Volumes) (*ProgressResult, error) {
	if users == nil {
		return nil, apperrors.NewMissingDependencyError(phaseProgress, "users")
	}
	if courses == nil {
		return nil, apperrors.NewMissingDependencyError(phaseProgress, "courses")
	}

	g.logger.Info().Int("enrollments", len(courses.Enrollments)).Msg("Generating learning progress")

	levels := make(map[uuid.UUID]models.EngagementLevel, len(users.Users))
	for _, u := range users.Users {
		levels[u.ID] = u.EngagementLevel
	}
	byID := make(map[int64]models.Course, len(courses.Courses))
	for _, c := range courses.Courses {
		byID[c.ID] = c
	}

	var (
		completions []models.Completion
		tracking    []models.TimeTracking
		skipped     []Skip
	)
	for _, e := range courses.Enrollments {
		course, ok := byID[e.CourseID]
		if !ok {
			skipped = append(skipped, g.skip(phaseProgress, "enrollment_without_course", strconv.FormatInt(e.ID, 10)))
			continue
		}
		level := levelOrMedium(levels, e)

		completion, completed := g.completion(e, course, level)
		if completed {
			completions = append(completions, completion)
		}
		tracking = append(tracking, g.timeTracking(e, course, level, completion, completed))
	}

	sessions := g.sessions(courses.Enrollments, levels, vol.MaxSessions)

	var submissions []models.Submission
	for _, a := range courses.Assignments {
		subs, skips := g.submissions(a, courses.EnrollmentsOf(a.CourseID), levels)
		submissions = append(submissions, subs...)
		skipped = append(skipped, skips...)
	}

	storedCompletions, err := InsertAll(ctx, g.batch, TableCompletions, completions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate completions: %w", err)
	}
	storedTracking, err := InsertAll(ctx, g.batch, TableTimeTracking, tracking)
	if err != nil {
		return nil, fmt.Errorf("failed to generate time tracking: %w", err)
	}
	storedSessions, err := InsertAll(ctx, g.batch, TableSessions, sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sessions: %w", err)
	}
	storedSubmissions, err := InsertAll(ctx, g.batch, TableSubmissions, submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to generate submissions: %w", err)
	}

	g.logger.Info().
		Int("completions", len(storedCompletions)).
		Int("time_tracking", len(storedTracking)).
		Int("sessions", len(storedSessions)).
		Int("submissions", len(storedSubmissions)).
		Msg("Learning progress generated")

	return &ProgressResult{
		Completions:  storedCompletions,
		TimeTracking: storedTracking,
		Sessions:     storedSessions,
		Submissions:  storedSubmissions,
		Skipped:      skipped,
	}, nil
}

func levelOrMedium(levels map[uuid.UUID]models.EngagementLevel, e models.Enrollment) models.EngagementLevel {
	if l, ok := levels[e.UserID]; ok {
		return l
	}
	return models.EngagementMedium
}

// CompletionProbability combines engagement, difficulty and motivation into
// the chance that an enrollment ends in a completion
func (g *Generator) CompletionProbability(level models.EngagementLevel, difficulty int, motivation models.MotivationLevel) float64 {
	p := g.scenario.Progress
	eng, ok := p.EngagementMultiplier[level]
	if !ok {
		eng = 1
	}
	mot, ok := p.MotivationMultiplier[motivation]
	if !ok {
		mot = 1
	}
	prob := p.BaseCompletion * eng * float64(11-difficulty) / 10 * mot
	return clamp(prob, p.MinProbability, p.MaxProbability)
}

func (g *Generator) completion(e models.Enrollment, c models.Course, level models.EngagementLevel) (models.Completion, bool) {
	if !g.rnd.Chance(g.CompletionProbability(level, c.DifficultyScore, e.Motivation)) {
		return models.Completion{}, false
	}

	// the latter 60% of the enrollment to end span, never after the clock
	span := c.EndDate.Sub(e.EnrolledAt)
	earliest := e.EnrolledAt.Add(span * 2 / 5)
	if earliest.After(g.now) {
		return models.Completion{}, false
	}
	latest := minTime(c.EndDate, g.now)

	share := studyTimeShare[level]
	hours := float64(c.EstimatedHours) * g.rnd.FloatBetween(share[0], share[1])

	score := 75 + scoreBonus.draw(g.rnd, level) - (c.DifficultyScore-5)*2 + g.rnd.IntBetween(-10, 10)
	final := clamp(float64(score), MinFinalScore, MaxFinalScore)

	return models.Completion{
		UserID:            e.UserID,
		CourseID:          c.ID,
		CompletedAt:       g.rnd.DateBetween(earliest, latest),
		FinalScore:        final,
		StudyHours:        round1(hours),
		CertificateIssued: final >= 70,
	}, true
}

func (g *Generator) timeTracking(e models.Enrollment, c models.Course, level models.EngagementLevel, done models.Completion, completed bool) models.TimeTracking {
	t := models.TimeTracking{
		UserID:       e.UserID,
		CourseID:     c.ID,
		StreakDays:   streakDays.draw(g.rnd, level),
		LastAccessed: g.rnd.DateBetween(e.EnrolledAt, g.now),
	}
	if completed {
		t.ProgressPercentage = 100
		t.TotalMinutes = int(math.Round(done.StudyHours * 60))
		t.LastAccessed = done.CompletedAt
		return t
	}

	t.ProgressPercentage = partialProgress.draw(g.rnd, level)
	minutes := float64(c.EstimatedHours*60*t.ProgressPercentage) / 100 * g.rnd.FloatBetween(0.8, 1.2)
	t.TotalMinutes = int(math.Round(minutes))
	return t
}

// sessions draws min(limit, 8 x enrollments) study sessions over random enrollments
func (g *Generator) sessions(enrollments []models.Enrollment, levels map[uuid.UUID]models.EngagementLevel, limit int) []models.Session {
	n := sessionsPerEnrollment * len(enrollments)
	if limit < n {
		n = limit
	}
	if n <= 0 {
		return nil
	}

	out := make([]models.Session, 0, n)
	for i := 0; i < n; i++ {
		e := random.MustChoice(g.rnd, enrollments)
		minutes := sessionMinutes.draw(g.rnd, levelOrMedium(levels, e))
		start := g.rnd.DateBetween(e.EnrolledAt, g.now)
		out = append(out, models.Session{
			UserID:          e.UserID,
			CourseID:        e.CourseID,
			StartedAt:       start,
			EndedAt:         start.Add(time.Duration(minutes) * time.Minute),
			DurationMinutes: minutes,
			IPAddress:       g.rnd.IPv4(),
			UserAgent:       g.rnd.UserAgent(),
		})
	}
	return out
}

// submissions has 70 to 90 percent of a course's enrollments answer one
// assignment. Timing and score follow each learner's engagement.
func (g *Generator) submissions(a models.Assignment, enrollments []models.Enrollment, levels map[uuid.UUID]models.EngagementLevel) ([]models.Submission, []Skip) {
	if len(enrollments) == 0 {
		return nil, nil
	}

	share := g.scenario.Progress.SubmissionShare
	pct := g.rnd.IntBetween(share.Min, share.Max)
	k := int(math.Round(float64(len(enrollments)*pct) / 100))

	var (
		out   []models.Submission
		skips []Skip
	)
	for _, e := range random.Sample(g.rnd, enrollments, k) {
		level := levelOrMedium(levels, e)
		offset := time.Duration(submissionOffsetDays.draw(g.rnd, level))*24*time.Hour +
			time.Duration(g.rnd.IntBetween(0, 23))*time.Hour
		submitted := a.DueDate.Add(offset)
		if submitted.After(g.now) {
			skips = append(skips, Skip{Phase: phaseProgress, Reason: SkipNotDueYet, Ref: strconv.FormatInt(a.ID, 10)})
			continue
		}

		pctScore := clamp(float64(75+submissionAdjustment[level]+g.rnd.IntBetween(-10, 15)), 0, 100)
		late := submitted.After(a.DueDate)
		status := "submitted"
		if late {
			status = "late"
		}
		out = append(out, models.Submission{
			AssignmentID: a.ID,
			UserID:       e.UserID,
			SubmittedAt:  submitted,
			Score:        round1(pctScore / 100 * float64(a.MaxScore)),
			IsLate:       late,
			Status:       status,
		})
	}
	return out, skips
}
