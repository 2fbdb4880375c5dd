package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/store"
)

// ActivityType is the kind of a collaborative activity
type ActivityType string

const (
	ActivityMessage       ActivityType = "message"
	ActivityDocumentShare ActivityType = "document_share"
	ActivityMeeting       ActivityType = "meeting"
	ActivityMention       ActivityType = "mention"
	ActivityCollaboration ActivityType = "collaboration"
)

// ActivityTypes lists every activity type
var ActivityTypes = []ActivityType{
	ActivityMessage, ActivityDocumentShare, ActivityMeeting, ActivityMention, ActivityCollaboration,
}

// Participant roles
const (
	ParticipantOrganizer   = "organizer"
	ParticipantMember      = "participant"
	ParticipantContributor = "contributor"
	ParticipantObserver    = "observer"
)

// Activity is one entry of a community's activity feed
type Activity struct {
	ID               int64                  `json:"id" db:"id"`
	UserID           uuid.UUID              `json:"userId" db:"user_id"`
	CommunityID      int64                  `json:"workspaceId" db:"workspace_id"`
	Type             ActivityType           `json:"activityType" db:"activity_type"`
	Title            string                 `json:"title" db:"title"`
	Description      string                 `json:"description" db:"description"`
	ParticipantCount int                    `json:"participantCount" db:"participant_count"`
	CreatedAt        time.Time              `json:"createdAt" db:"created_at"`
	Metadata         map[string]interface{} `json:"metadata" db:"metadata"`

	// Members chosen to join, organizer first. Not persisted on the activity row.
	ParticipantIDs []uuid.UUID `json:"-" db:"-"`
}

// Row implements the seed record contract
func (a Activity) Row() store.Row {
	meta := make(map[string]interface{}, len(a.Metadata))
	for k, v := range a.Metadata {
		meta[k] = v
	}
	return store.Row{
		"user_id":           a.UserID,
		"workspace_id":      a.CommunityID,
		"activity_type":     string(a.Type),
		"title":             a.Title,
		"description":       a.Description,
		"participant_count": a.ParticipantCount,
		"created_at":        a.CreatedAt,
		"metadata":          meta,
	}
}

// Stored returns the activity with its store-assigned id
func (a Activity) Stored(r store.Row) (Activity, error) {
	id, err := r.Int64("id")
	a.ID = id
	return a, err
}

// ActivityParticipant is a member taking part in an activity
type ActivityParticipant struct {
	ID          int64     `json:"id" db:"id"`
	ActivityID  int64     `json:"activityId" db:"activity_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	CommunityID int64     `json:"communityId" db:"community_id"`
	Role        string    `json:"participationType" db:"participation_type"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`
}

// Row implements the seed record contract
func (p ActivityParticipant) Row() store.Row {
	return store.Row{
		"activity_id":        p.ActivityID,
		"user_id":            p.UserID,
		"community_id":       p.CommunityID,
		"participation_type": p.Role,
		"joined_at":          p.JoinedAt,
	}
}

// Stored returns the participant with its store-assigned id
func (p ActivityParticipant) Stored(r store.Row) (ActivityParticipant, error) {
	id, err := r.Int64("id")
	p.ID = id
	return p, err
}
