package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/store"
)

// User is a seeded profile. Role is kept in memory only; the persisted
// authorization scope lives in UserRole.
type User struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	FirstName       string          `json:"firstName" db:"first_name"`
	LastName        string          `json:"lastName" db:"last_name"`
	Email           string          `json:"email" db:"email"`
	Role            RoleType        `json:"role" db:"-"`
	SchoolID        *int64          `json:"schoolId,omitempty" db:"school_id"`
	GenerationID    *int64          `json:"generationId,omitempty" db:"generation_id"`
	CommunityID     *int64          `json:"communityId,omitempty" db:"community_id"`
	RedID           *uuid.UUID      `json:"redId,omitempty" db:"-"`
	SupervisedIDs   []int64         `json:"supervisedSchoolIds,omitempty" db:"-"`
	EngagementLevel EngagementLevel `json:"engagementLevel" db:"engagement_level"`
	ActivityPattern string          `json:"activityPattern" db:"activity_pattern"`
	PasswordHash    string          `json:"-" db:"password_hash"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	LastActiveAt    time.Time       `json:"lastActiveAt" db:"last_active_at"`
}

// FullName returns first and last names joined
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Row implements the seed record contract
func (u User) Row() store.Row {
	return store.Row{
		"id":               u.ID,
		"first_name":       u.FirstName,
		"last_name":        u.LastName,
		"name":             u.FullName(),
		"email":            u.Email,
		"school_id":        nullableInt64(u.SchoolID),
		"generation_id":    nullableInt64(u.GenerationID),
		"community_id":     nullableInt64(u.CommunityID),
		"engagement_level": string(u.EngagementLevel),
		"activity_pattern": u.ActivityPattern,
		"password_hash":    u.PasswordHash,
		"approval_status":  "approved",
		"created_at":       u.CreatedAt,
		"last_active_at":   nullableTime(u.LastActiveAt),
	}
}

// Stored returns the user with the id as the store recorded it
func (u User) Stored(r store.Row) (User, error) {
	id, err := r.UUID("id")
	u.ID = id
	return u, err
}

// UserRole is the authorization scope of a user, stored apart from the profile
type UserRole struct {
	ID           int64      `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"userId" db:"user_id"`
	Role         RoleType   `json:"roleType" db:"role_type"`
	SchoolID     *int64     `json:"schoolId,omitempty" db:"school_id"`
	GenerationID *int64     `json:"generationId,omitempty" db:"generation_id"`
	CommunityID  *int64     `json:"communityId,omitempty" db:"community_id"`
	RedID        *uuid.UUID `json:"redId,omitempty" db:"red_id"`
	AssignedAt   time.Time  `json:"assignedAt" db:"assigned_at"`
	IsActive     bool       `json:"isActive" db:"is_active"`
}

// RolesFor derives the role rows of a user. A supervisor gets one row per
// school of their network, all sharing the network id.
func RolesFor(u User) []UserRole {
	base := UserRole{
		UserID:       u.ID,
		Role:         u.Role,
		SchoolID:     u.SchoolID,
		GenerationID: u.GenerationID,
		CommunityID:  u.CommunityID,
		RedID:        u.RedID,
		AssignedAt:   u.CreatedAt,
		IsActive:     true,
	}
	if u.Role != RoleSupervisor || len(u.SupervisedIDs) == 0 {
		return []UserRole{base}
	}

	roles := make([]UserRole, 0, len(u.SupervisedIDs))
	for _, id := range u.SupervisedIDs {
		r := base
		schoolID := id
		r.SchoolID = &schoolID
		roles = append(roles, r)
	}
	return roles
}

// Row implements the seed record contract
func (r UserRole) Row() store.Row {
	return store.Row{
		"user_id":       r.UserID,
		"role_type":     string(r.Role),
		"school_id":     nullableInt64(r.SchoolID),
		"generation_id": nullableInt64(r.GenerationID),
		"community_id":  nullableInt64(r.CommunityID),
		"red_id":        nullableUUID(r.RedID),
		"assigned_at":   r.AssignedAt,
		"is_active":     r.IsActive,
	}
}

// Stored returns the role with its store-assigned id
func (r UserRole) Stored(row store.Row) (UserRole, error) {
	id, err := row.Int64("id")
	r.ID = id
	return r, err
}

// CommunityLeader links a community to the one user leading it
type CommunityLeader struct {
	ID           int64     `json:"id" db:"id"`
	CommunityID  int64     `json:"communityId" db:"community_id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	SchoolID     int64     `json:"schoolId" db:"school_id"`
	GenerationID int64     `json:"generationId" db:"generation_id"`
	AssignedAt   time.Time `json:"assignedAt" db:"assigned_at"`
}

// Row implements the seed record contract
func (l CommunityLeader) Row() store.Row {
	return store.Row{
		"community_id":  l.CommunityID,
		"user_id":       l.UserID,
		"school_id":     l.SchoolID,
		"generation_id": l.GenerationID,
		"assigned_at":   l.AssignedAt,
	}
}

// Stored returns the link with its store-assigned id
func (l CommunityLeader) Stored(r store.Row) (CommunityLeader, error) {
	id, err := r.Int64("id")
	l.ID = id
	return l, err
}
