package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin      RoleType = "admin"
	RoleConsultant RoleType = "consultor"
	RoleSupervisor RoleType = "supervisor_de_red"
	RoleTeacher    RoleType = "docente"
	RoleLeader     RoleType = "lider_comunidad"
	RoleStudent    RoleType = "estudiante"
)

// Roles lists every role in creation order
var Roles = []RoleType{RoleAdmin, RoleConsultant, RoleSupervisor, RoleTeacher, RoleLeader, RoleStudent}

// IsLearner reports whether users of this role enroll in courses
func (r RoleType) IsLearner() bool {
	return r == RoleStudent || r == RoleLeader
}

// EngagementLevel is the five-point scale that biases a user's simulated behavior
type EngagementLevel string

const (
	EngagementVeryHigh EngagementLevel = "muy_alto"
	EngagementHigh     EngagementLevel = "alto"
	EngagementMedium   EngagementLevel = "medio"
	EngagementLow      EngagementLevel = "bajo"
	EngagementVeryLow  EngagementLevel = "muy_bajo"
)

// EngagementLevels lists the scale from highest to lowest
var EngagementLevels = []EngagementLevel{
	EngagementVeryHigh, EngagementHigh, EngagementMedium, EngagementLow, EngagementVeryLow,
}

// MotivationLevel is attached to each enrollment
type MotivationLevel string

const (
	MotivationHigh   MotivationLevel = "alto"
	MotivationMedium MotivationLevel = "medio"
	MotivationLow    MotivationLevel = "bajo"
)

// metadata returns the json payload stored alongside a row
func metadata(kv ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}

// nullableInt64 returns nil for a nil pointer so stores write NULL
func nullableInt64(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableUUID(p *uuid.UUID) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
