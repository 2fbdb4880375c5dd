package models

import (
	"time"

	"github.com/yigit/fneseed/internal/store"
)

// School is the root of the organization tree. Its id is supplied by the seeder.
type School struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	HasGenerations bool      `json:"hasGenerations" db:"has_generations"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Row implements the seed record contract
func (s School) Row() store.Row {
	return store.Row{
		"id":              s.ID,
		"name":            s.Name,
		"has_generations": s.HasGenerations,
		"created_at":      s.CreatedAt,
	}
}

// Stored returns the school with the id the store handed back
func (s School) Stored(r store.Row) (School, error) {
	id, err := r.Int64("id")
	s.ID = id
	return s, err
}

// Generation is a cohort inside a school
type Generation struct {
	ID         int64     `json:"id" db:"id"`
	SchoolID   int64     `json:"schoolId" db:"school_id"`
	Name       string    `json:"name" db:"name"`
	GradeRange string    `json:"gradeRange" db:"grade_range"`
	Year       int       `json:"year" db:"year"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Row implements the seed record contract
func (g Generation) Row() store.Row {
	return store.Row{
		"school_id":   g.SchoolID,
		"name":        g.Name,
		"grade_range": g.GradeRange,
		"year":        g.Year,
		"created_at":  g.CreatedAt,
	}
}

// Stored returns the generation with its store-assigned id
func (g Generation) Stored(r store.Row) (Generation, error) {
	id, err := r.Int64("id")
	g.ID = id
	return g, err
}
