package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/store"
)

// Course is taught by one docente at one school
type Course struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Subject         string    `json:"subject" db:"subject"`
	Topic           string    `json:"topic" db:"topic"`
	Difficulty      string    `json:"difficulty" db:"difficulty_level"`
	DifficultyScore int       `json:"difficultyScore" db:"difficulty_score"`
	DurationWeeks   int       `json:"durationWeeks" db:"duration_weeks"`
	EstimatedHours  int       `json:"estimatedHours" db:"estimated_hours"`
	TotalLessons    int       `json:"totalLessons" db:"total_lessons"`
	TeacherID       uuid.UUID `json:"teacherId" db:"instructor_id"`
	SchoolID        int64     `json:"schoolId" db:"school_id"`
	StartDate       time.Time `json:"startDate" db:"start_date"`
	EndDate         time.Time `json:"endDate" db:"end_date"`
	Tags            []string  `json:"tags" db:"tags"`
	Prerequisites   []string  `json:"prerequisites" db:"prerequisites"`
	Scenario        string    `json:"courseScenario" db:"-"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Row implements the seed record contract
func (c Course) Row() store.Row {
	prereq := c.Prerequisites
	if prereq == nil {
		prereq = []string{}
	}
	return store.Row{
		"title":            c.Title,
		"description":      c.Description,
		"subject":          c.Subject,
		"topic":            c.Topic,
		"difficulty_level": c.Difficulty,
		"difficulty_score": c.DifficultyScore,
		"duration_weeks":   c.DurationWeeks,
		"estimated_hours":  c.EstimatedHours,
		"total_lessons":    c.TotalLessons,
		"instructor_id":    c.TeacherID,
		"school_id":        c.SchoolID,
		"start_date":       c.StartDate,
		"end_date":         c.EndDate,
		"tags":             c.Tags,
		"prerequisites":    prereq,
		"status":           "published",
		"created_at":       c.CreatedAt,
		"metadata":         metadata("course_scenario", c.Scenario),
	}
}

// Stored returns the course with its store-assigned id
func (c Course) Stored(r store.Row) (Course, error) {
	id, err := r.Int64("id")
	c.ID = id
	return c, err
}

// Enrollment links a learner to a course
type Enrollment struct {
	ID         int64           `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"userId" db:"user_id"`
	CourseID   int64           `json:"courseId" db:"course_id"`
	EnrolledAt time.Time       `json:"enrolledAt" db:"enrolled_at"`
	Status     string          `json:"status" db:"status"`
	Motivation MotivationLevel `json:"motivationLevel" db:"-"`
}

// Row implements the seed record contract
func (e Enrollment) Row() store.Row {
	return store.Row{
		"user_id":     e.UserID,
		"course_id":   e.CourseID,
		"enrolled_at": e.EnrolledAt,
		"status":      e.Status,
		"metadata":    metadata("motivation_level", string(e.Motivation)),
	}
}

// Stored returns the enrollment with its store-assigned id
func (e Enrollment) Stored(r store.Row) (Enrollment, error) {
	id, err := r.Int64("id")
	e.ID = id
	return e, err
}

// Assignment belongs to a course
type Assignment struct {
	ID          int64     `json:"id" db:"id"`
	CourseID    int64     `json:"courseId" db:"course_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"assignmentType" db:"assignment_type"`
	DueDate     time.Time `json:"dueDate" db:"due_date"`
	MaxScore    int       `json:"maxScore" db:"max_score"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Row implements the seed record contract
func (a Assignment) Row() store.Row {
	return store.Row{
		"course_id":       a.CourseID,
		"title":           a.Title,
		"description":     a.Description,
		"assignment_type": a.Type,
		"due_date":        a.DueDate,
		"max_score":       a.MaxScore,
		"created_at":      a.CreatedAt,
	}
}

// Stored returns the assignment with its store-assigned id
func (a Assignment) Stored(r store.Row) (Assignment, error) {
	id, err := r.Int64("id")
	a.ID = id
	return a, err
}
