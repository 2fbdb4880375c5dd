package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/store"
)

// Completion records a finished course
type Completion struct {
	ID                int64     `json:"id" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	CourseID          int64     `json:"courseId" db:"course_id"`
	CompletedAt       time.Time `json:"completedAt" db:"completed_at"`
	FinalScore        float64   `json:"finalScore" db:"final_score"`
	StudyHours        float64   `json:"studyHours" db:"total_study_hours"`
	CertificateIssued bool      `json:"certificateIssued" db:"certificate_issued"`
}

// Row implements the seed record contract
func (c Completion) Row() store.Row {
	return store.Row{
		"user_id":            c.UserID,
		"course_id":          c.CourseID,
		"completed_at":       c.CompletedAt,
		"final_score":        c.FinalScore,
		"total_study_hours":  c.StudyHours,
		"certificate_issued": c.CertificateIssued,
	}
}

// Stored returns the completion with its store-assigned id
func (c Completion) Stored(r store.Row) (Completion, error) {
	id, err := r.Int64("id")
	c.ID = id
	return c, err
}

// TimeTracking aggregates a learner's time in one course
type TimeTracking struct {
	ID                 int64     `json:"id" db:"id"`
	UserID             uuid.UUID `json:"userId" db:"user_id"`
	CourseID           int64     `json:"courseId" db:"course_id"`
	TotalMinutes       int       `json:"totalTimeMinutes" db:"total_time_minutes"`
	ProgressPercentage int       `json:"progressPercentage" db:"progress_percentage"`
	StreakDays         int       `json:"streakDays" db:"streak_days"`
	LastAccessed       time.Time `json:"lastAccessed" db:"last_accessed"`
}

// Row implements the seed record contract
func (t TimeTracking) Row() store.Row {
	return store.Row{
		"user_id":             t.UserID,
		"course_id":           t.CourseID,
		"total_time_minutes":  t.TotalMinutes,
		"progress_percentage": t.ProgressPercentage,
		"streak_days":         t.StreakDays,
		"last_accessed":       t.LastAccessed,
	}
}

// Stored returns the aggregate with its store-assigned id
func (t TimeTracking) Stored(r store.Row) (TimeTracking, error) {
	id, err := r.Int64("id")
	t.ID = id
	return t, err
}

// Session is one study session log entry
type Session struct {
	ID              int64     `json:"id" db:"id"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	CourseID        int64     `json:"courseId" db:"course_id"`
	StartedAt       time.Time `json:"sessionStart" db:"session_start"`
	EndedAt         time.Time `json:"sessionEnd" db:"session_end"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	IPAddress       string    `json:"ipAddress" db:"ip_address"`
	UserAgent       string    `json:"userAgent" db:"user_agent"`
}

// Row implements the seed record contract
func (s Session) Row() store.Row {
	return store.Row{
		"user_id":          s.UserID,
		"course_id":        s.CourseID,
		"session_start":    s.StartedAt,
		"session_end":      s.EndedAt,
		"duration_minutes": s.DurationMinutes,
		"ip_address":       s.IPAddress,
		"user_agent":       s.UserAgent,
	}
}

// Stored returns the session with its store-assigned id
func (s Session) Stored(r store.Row) (Session, error) {
	id, err := r.Int64("id")
	s.ID = id
	return s, err
}

// Submission is a learner's answer to an assignment
type Submission struct {
	ID           int64     `json:"id" db:"id"`
	AssignmentID int64     `json:"assignmentId" db:"assignment_id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	SubmittedAt  time.Time `json:"submittedAt" db:"submitted_at"`
	Score        float64   `json:"score" db:"score"`
	IsLate       bool      `json:"isLate" db:"is_late"`
	Status       string    `json:"status" db:"status"`
}

// Row implements the seed record contract
func (s Submission) Row() store.Row {
	return store.Row{
		"assignment_id": s.AssignmentID,
		"user_id":       s.UserID,
		"submitted_at":  s.SubmittedAt,
		"score":         s.Score,
		"is_late":       s.IsLate,
		"status":        s.Status,
	}
}

// Stored returns the submission with its store-assigned id
func (s Submission) Stored(r store.Row) (Submission, error) {
	id, err := r.Int64("id")
	s.ID = id
	return s, err
}
