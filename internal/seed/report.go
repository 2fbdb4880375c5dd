package seed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
)

// Health buckets used in the report
const (
	HealthExcellent  = "excellent"
	HealthGood       = "good"
	HealthStruggling = "struggling"
	HealthCritical   = "critical"
)

// HealthBucket classifies a community health score
func HealthBucket(score int) string {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 60:
		return HealthGood
	case score >= 40:
		return HealthStruggling
	default:
		return HealthCritical
	}
}

// TableCheck compares the rows a phase produced with what the store holds
type TableCheck struct {
	Table    string `json:"table"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
}

// Report summarizes one pipeline run
type Report struct {
	Tag             string          `json:"tag"`
	Seed            uint64          `json:"seed"`
	StartedAt       time.Time       `json:"startedAt"`
	FinishedAt      time.Time       `json:"finishedAt"`
	DurationSeconds float64         `json:"durationSeconds"`
	Volumes         config.Volumes  `json:"volumes"`
	Cleanup         *CleanupSummary `json:"cleanup,omitempty"`

	Rows                  map[string]int `json:"rows"`
	UsersByRole           map[string]int `json:"usersByRole"`
	UsersBySchool         map[string]int `json:"usersBySchool"`
	CommunitiesByScenario map[string]int `json:"communitiesByScenario"`
	CommunitiesByHealth   map[string]int `json:"communitiesByHealth"`
	ActivitiesByType      map[string]int `json:"activitiesByType"`
	CompletionRate        float64        `json:"completionRate"`
	AverageFinalScore     float64        `json:"averageFinalScore"`
	Skipped               map[string]int `json:"skipped"`

	Validation []TableCheck `json:"validation"`
	Warnings   []string     `json:"warnings"`

	// Path of the saved artifact, empty until written
	ArtifactPath string `json:"-"`
}

// JSON renders the report as indented JSON
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// Results bundles every phase's output
type Results struct {
	Org      *OrgResult
	Users    *UserResult
	Courses  *CourseResult
	Activity *ActivityResult
	Progress *ProgressResult
}

// Expected returns the number of rows each table should hold for this run
func (r Results) Expected() map[string]int {
	out := map[string]int{}
	if r.Org != nil {
		out[TableSchools] = len(r.Org.Schools)
		out[TableGenerations] = len(r.Org.Generations)
		out[TableCommunities] = len(r.Org.Communities)
	}
	if r.Users != nil {
		out[TableProfiles] = len(r.Users.Users)
		out[TableUserRoles] = len(r.Users.Roles)
		out[TableCommunityLeaders] = len(r.Users.Leaders)
	}
	if r.Courses != nil {
		out[TableCourses] = len(r.Courses.Courses)
		out[TableEnrollments] = len(r.Courses.Enrollments)
		out[TableAssignments] = len(r.Courses.Assignments)
	}
	if r.Activity != nil {
		out[TableActivities] = len(r.Activity.Activities)
		out[TableParticipants] = len(r.Activity.Participants)
	}
	if r.Progress != nil {
		out[TableCompletions] = len(r.Progress.Completions)
		out[TableTimeTracking] = len(r.Progress.TimeTracking)
		out[TableSessions] = len(r.Progress.Sessions)
		out[TableSubmissions] = len(r.Progress.Submissions)
	}
	return out
}

// Skipped returns every skip recorded across phases
func (r Results) Skipped() []Skip {
	var out []Skip
	if r.Users != nil {
		out = append(out, r.Users.Skipped...)
	}
	if r.Activity != nil {
		out = append(out, r.Activity.Skipped...)
	}
	if r.Progress != nil {
		out = append(out, r.Progress.Skipped...)
	}
	return out
}

// BuildReport aggregates the distributions of a finished run
func BuildReport(tag string, seed uint64, vol config.Volumes, started, finished time.Time, res Results) *Report {
	report := &Report{
		Tag:                   tag,
		Seed:                  seed,
		StartedAt:             started.UTC(),
		FinishedAt:            finished.UTC(),
		DurationSeconds:       finished.Sub(started).Seconds(),
		Volumes:               vol,
		Rows:                  res.Expected(),
		UsersByRole:           map[string]int{},
		UsersBySchool:         map[string]int{},
		CommunitiesByScenario: map[string]int{},
		CommunitiesByHealth:   map[string]int{},
		ActivitiesByType:      map[string]int{},
		Skipped:               map[string]int{},
		Validation:            []TableCheck{},
		Warnings:              []string{},
	}

	if res.Org != nil {
		for _, c := range res.Org.Communities {
			report.CommunitiesByScenario[c.Scenario]++
			report.CommunitiesByHealth[HealthBucket(c.HealthScore)]++
		}
	}
	if res.Users != nil {
		report.UsersByRole = res.Users.RoleCounts()
		for _, u := range res.Users.Users {
			if u.SchoolID != nil && u.Role != models.RoleSupervisor {
				report.UsersBySchool[strconv.FormatInt(*u.SchoolID, 10)]++
			}
		}
	}
	if res.Activity != nil {
		report.ActivitiesByType = res.Activity.TypeCounts()
	}
	if res.Progress != nil && res.Courses != nil {
		report.CompletionRate = res.Progress.CompletionRate(len(res.Courses.Enrollments))
		report.AverageFinalScore = res.Progress.AverageFinalScore()
	}
	for _, s := range res.Skipped() {
		report.Skipped[s.Phase+"."+s.Reason]++
	}
	return report
}
