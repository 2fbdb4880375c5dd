package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
	"github.com/yigit/fneseed/internal/scenario"
)

const phaseActivity = "activity"

// Skip reasons the activity phase records
const (
	SkipOffHours        = "temporal_intensity"
	SkipEmptyCommunity  = "community_without_members"
	SkipMentionNoPeer   = "mention_without_peer"
	SkipUnknownScenario = "unknown_community_scenario" // neither the community's scenario nor the average one exists
)

var (
	messageTitles = []string{
		"Compartiendo avances de la semana",
		"Consulta sobre la planificación de la unidad",
		"Reflexión sobre la última clase",
		"Ideas para la evaluación formativa",
		"Coordinación de actividades del mes",
	}
	documentTitles = []string{
		"Guía de trabajo colaborativo",
		"Rúbrica de evaluación actualizada",
		"Presentación de la sesión de reflexión",
		"Planilla de seguimiento de aprendizajes",
		"Material de apoyo para la unidad",
	}
	meetingTitles = []string{
		"Reunión de planificación",
		"Sesión de seguimiento de la comunidad",
		"Taller de reflexión pedagógica",
		"Encuentro de capacitación",
	}
	collaborationTitles = []string{
		"Proyecto interdisciplinario",
		"Co-docencia en el aula",
		"Revisión entre pares de planificaciones",
		"Diseño conjunto de una unidad",
	}
	documentFormats  = []string{"pdf", "docx", "pptx", "xlsx"}
	meetingKinds     = []string{"planificacion", "seguimiento", "reflexion", "capacitacion"}
	meetingLengths   = []int{30, 45, 60, 90}
	mentionContexts  = []string{"pregunta", "reconocimiento", "solicitud_de_apoyo", "seguimiento"}
	collabStructures = []string{"proyecto", "co_docencia", "revision_entre_pares", "diseno_conjunto"}
)

// ActivityResult holds the stored activities and their participants
type ActivityResult struct {
	Activities   []models.Activity
	Participants []models.ActivityParticipant
	Skipped      []Skip
}

// TypeCounts counts activities per type
func (r *ActivityResult) TypeCounts() map[string]int {
	out := make(map[string]int, len(models.ActivityTypes))
	for _, a := range r.Activities {
		out[string(a.Type)]++
	}
	return out
}

// Activity simulates the community feed over the activity window. Each attempt
// draws a timestamp and is dropped when the temporal intensity at that moment
// says nobody would be active, so the feed follows school hours, weekdays and
// the academic calendar.
func (g *Generator) Activity(ctx context.Context, org *OrgResult, users *UserResult, vol config.Volumes) (*ActivityResult, error) {
	if org == nil {
		return nil, apperrors.NewMissingDependencyError(phaseActivity, "organizations")
	}
	if users == nil {
		return nil, apperrors.NewMissingDependencyError(phaseActivity, "users")
	}
	if vol.Activities > 0 && len(org.Communities) == 0 {
		return nil, apperrors.NewMissingDependencyError(phaseActivity, "communities")
	}

	g.logger.Info().Int("attempts", vol.Activities).Msg("Generating community activity")

	members := users.MembersByCommunity()
	communities := make([]random.Weighted[models.Community], len(org.Communities))
	for i, c := range org.Communities {
		communities[i] = random.W(c, communityWeight(c.HealthScore))
	}

	windowStart := g.now.Add(-g.scenario.ActivityWindow)
	var (
		activities []models.Activity
		skipped    []Skip
	)

	for i := 0; i < vol.Activities; i++ {
		ts := g.rnd.DateBetween(windowStart, g.now)
		if g.rnd.Float64() > g.scenario.Temporal.Intensity(ts) && g.rnd.Float64() > g.scenario.SkipEscape {
			skipped = append(skipped, Skip{Phase: phaseActivity, Reason: SkipOffHours})
			continue
		}

		community := random.MustWeightedChoice(g.rnd, communities)
		ref := strconv.FormatInt(community.ID, 10)

		pool := members[community.ID]
		if len(pool) == 0 {
			skipped = append(skipped, g.skip(phaseActivity, SkipEmptyCommunity, ref))
			continue
		}

		archetype, ok := g.scenario.Archetype(community.Scenario)
		if !ok {
			archetype, ok = g.scenario.Archetype(scenario.Average)
		}
		if !ok {
			skipped = append(skipped, g.skip(phaseActivity, SkipUnknownScenario, ref))
			continue
		}

		kind, err := random.WeightedChoice(g.rnd, g.typeWeights(archetype.Behavior))
		if err != nil {
			return nil, fmt.Errorf("failed to pick activity type: %w", err)
		}
		if kind == models.ActivityMention && len(pool) < 2 {
			skipped = append(skipped, g.skip(phaseActivity, SkipMentionNoPeer, ref))
			continue
		}

		activities = append(activities, g.newActivity(kind, community, archetype, pool, ts))
	}

	storedActivities, err := InsertAll(ctx, g.batch, TableActivities, activities)
	if err != nil {
		return nil, fmt.Errorf("failed to generate activities: %w", err)
	}

	var participants []models.ActivityParticipant
	for _, a := range storedActivities {
		participants = append(participants, participantsOf(a)...)
	}
	storedParticipants, err := InsertAll(ctx, g.batch, TableParticipants, participants)
	if err != nil {
		return nil, fmt.Errorf("failed to generate activity participants: %w", err)
	}

	g.logger.Info().
		Int("activities", len(storedActivities)).
		Int("participants", len(storedParticipants)).
		Int("skipped", len(skipped)).
		Msg("Community activity generated")

	return &ActivityResult{
		Activities:   storedActivities,
		Participants: storedParticipants,
		Skipped:      skipped,
	}, nil
}

// communityWeight favors healthy communities; every community keeps a weight of at least 1
func communityWeight(health int) float64 {
	w := float64(health) / 20
	if w < 1 {
		return 1
	}
	return w
}

// typeWeights scales the base activity mix by the community's behavior tags.
// The table is built in ActivityTypes order so draws are reproducible.
func (g *Generator) typeWeights(b scenario.Behavior) []random.Weighted[models.ActivityType] {
	out := make([]random.Weighted[models.ActivityType], 0, len(models.ActivityTypes))
	for _, t := range models.ActivityTypes {
		out = append(out, random.W(t, g.scenario.ActivityTypeWeights[t]*behaviorMultiplier(t, b)))
	}
	return out
}

func behaviorMultiplier(t models.ActivityType, b scenario.Behavior) float64 {
	switch t {
	case models.ActivityMessage:
		return tagFactor(b.MessageFrequency, "high", 1.5, "moderate", 1.0, 0.5)
	case models.ActivityDocumentShare:
		return tagFactor(b.DocumentSharing, "frequent", 1.3, "occasional", 1.0, 0.3)
	case models.ActivityMeeting:
		return tagFactor(b.MeetingAttendance, "excellent", 1.4, "good", 1.0, 0.4)
	case models.ActivityCollaboration:
		return tagFactor(b.PeerMentoring, "active", 1.6, "limited", 1.0, 0.2)
	default:
		return 1.0
	}
}

func tagFactor(tag, top string, topFactor float64, mid string, midFactor, otherwise float64) float64 {
	switch tag {
	case top:
		return topFactor
	case mid:
		return midFactor
	default:
		return otherwise
	}
}

// participantTarget returns how many members an activity involves, organizer
// included, clamped to the community size
func (g *Generator) participantTarget(kind models.ActivityType, a scenario.Archetype, size int) int {
	var n int
	switch kind {
	case models.ActivityMessage:
		n = g.rnd.IntBetween(1, 4)
	case models.ActivityDocumentShare:
		n = g.rnd.IntBetween(1, 6)
	case models.ActivityMeeting:
		n = g.rnd.IntBetween(3, 12)
	case models.ActivityMention:
		n = 2
	case models.ActivityCollaboration:
		n = g.rnd.IntBetween(2, 3+a.CollaborationIndex.Max/20)
	default:
		n = 1
	}
	if n > size {
		n = size
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (g *Generator) newActivity(kind models.ActivityType, c models.Community, a scenario.Archetype, pool []models.User, ts time.Time) models.Activity {
	organizer := random.MustChoice(g.rnd, pool)

	var others []models.User
	for _, m := range pool {
		if m.ID != organizer.ID {
			others = append(others, m)
		}
	}
	count := g.participantTarget(kind, a, len(pool))
	ids := []uuid.UUID{organizer.ID}
	for _, m := range random.Sample(g.rnd, others, count-1) {
		ids = append(ids, m.ID)
	}

	act := models.Activity{
		UserID:           organizer.ID,
		CommunityID:      c.ID,
		Type:             kind,
		ParticipantCount: len(ids),
		CreatedAt:        ts,
		ParticipantIDs:   ids,
		Metadata: map[string]interface{}{
			"community_scenario": c.Scenario,
			"health_score":       c.HealthScore,
		},
	}

	switch kind {
	case models.ActivityMessage:
		act.Title = random.MustChoice(g.rnd, messageTitles)
		act.Description = fmt.Sprintf("%s comparte un mensaje con la comunidad %s.", organizer.FullName(), c.Name)
		act.Metadata["has_attachments"] = g.rnd.Chance(0.2)
		act.Metadata["thread_length"] = g.rnd.IntBetween(1, 2*len(ids))
	case models.ActivityDocumentShare:
		act.Title = random.MustChoice(g.rnd, documentTitles)
		act.Description = fmt.Sprintf("%s compartió un documento con la comunidad.", organizer.FullName())
		act.Metadata["document_type"] = random.MustChoice(g.rnd, documentFormats)
		act.Metadata["file_size_kb"] = g.rnd.IntBetween(50, 5000)
		act.Metadata["download_count"] = g.rnd.IntBetween(0, 2*len(ids))
	case models.ActivityMeeting:
		act.Title = random.MustChoice(g.rnd, meetingTitles)
		act.Description = fmt.Sprintf("Reunión convocada por %s con %d participantes.", organizer.FullName(), len(ids))
		act.Metadata["meeting_type"] = random.MustChoice(g.rnd, meetingKinds)
		act.Metadata["duration_minutes"] = random.MustChoice(g.rnd, meetingLengths)
		attendance := a.Behavior.AttendanceRate()
		act.Metadata["attendance_rate"] = g.rnd.IntBetween(attendance.Min, attendance.Max)
	case models.ActivityMention:
		mentioned := nameOf(pool, ids[1])
		act.Title = "Mención en la comunidad"
		act.Description = fmt.Sprintf("%s mencionó a %s.", organizer.FullName(), mentioned)
		act.Metadata["mentioned_user_id"] = ids[1].String()
		act.Metadata["context"] = random.MustChoice(g.rnd, mentionContexts)
	case models.ActivityCollaboration:
		act.Title = random.MustChoice(g.rnd, collaborationTitles)
		act.Description = fmt.Sprintf("%s inició una colaboración con %d colegas.", organizer.FullName(), len(ids)-1)
		act.Metadata["collaboration_type"] = random.MustChoice(g.rnd, collabStructures)
		act.Metadata["collaboration_index"] = g.rnd.IntBetween(a.CollaborationIndex.Min, a.CollaborationIndex.Max)
	}
	return act
}

func nameOf(pool []models.User, id uuid.UUID) string {
	for _, m := range pool {
		if m.ID == id {
			return m.FullName()
		}
	}
	return ""
}

// participantsOf builds the participant rows of a stored activity. Join times
// are staggered a minute apart after the activity's creation. A solo activity
// has no participant rows.
func participantsOf(a models.Activity) []models.ActivityParticipant {
	if len(a.ParticipantIDs) < 2 {
		return nil
	}
	out := make([]models.ActivityParticipant, 0, len(a.ParticipantIDs))
	for i, id := range a.ParticipantIDs {
		role := participantRole(a.Type, i)
		out = append(out, models.ActivityParticipant{
			ActivityID:  a.ID,
			UserID:      id,
			CommunityID: a.CommunityID,
			Role:        role,
			JoinedAt:    a.CreatedAt.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func participantRole(kind models.ActivityType, i int) string {
	if i == 0 {
		return models.ParticipantOrganizer
	}
	switch kind {
	case models.ActivityCollaboration, models.ActivityDocumentShare:
		return models.ParticipantContributor
	case models.ActivityMention:
		return models.ParticipantObserver
	default:
		return models.ParticipantMember
	}
}
