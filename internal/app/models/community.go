package models

import (
	"time"

	"github.com/yigit/fneseed/internal/store"
)

// Community is a growth community inside a generation
type Community struct {
	ID           int64     `json:"id" db:"id"`
	SchoolID     int64     `json:"schoolId" db:"school_id"`
	GenerationID int64     `json:"generationId" db:"generation_id"`
	Name         string    `json:"name" db:"name"`
	Scenario     string    `json:"scenario" db:"scenario"`
	HealthScore  int       `json:"healthScore" db:"health_score"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Row implements the seed record contract
func (c Community) Row() store.Row {
	return store.Row{
		"school_id":     c.SchoolID,
		"generation_id": c.GenerationID,
		"name":          c.Name,
		"scenario":      c.Scenario,
		"health_score":  c.HealthScore,
		"created_at":    c.CreatedAt,
	}
}

// Stored returns the community with its store-assigned id
func (c Community) Stored(r store.Row) (Community, error) {
	id, err := r.Int64("id")
	c.ID = id
	return c, err
}
