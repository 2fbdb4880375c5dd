package seed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
)

const phaseUsers = "users"

var activityPatterns = map[models.EngagementLevel]string{
	models.EngagementVeryHigh: "daily",
	models.EngagementHigh:     "frequent",
	models.EngagementMedium:   "weekly",
	models.EngagementLow:      "occasional",
	models.EngagementVeryLow:  "rare",
}

// hours since last activity, upper bound per engagement level
var lastActiveHours = map[models.EngagementLevel]int{
	models.EngagementVeryHigh: 24,
	models.EngagementHigh:     72,
	models.EngagementMedium:   7 * 24,
	models.EngagementLow:      21 * 24,
	models.EngagementVeryLow:  60 * 24,
}

// UserResult holds the stored users together with their role and leader rows
type UserResult struct {
	Users   []models.User
	Roles   []models.UserRole
	Leaders []models.CommunityLeader
	Skipped []Skip
}

// ByRole returns the users holding role
func (r *UserResult) ByRole(role models.RoleType) []models.User {
	var out []models.User
	for _, u := range r.Users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// Learners returns students and community leaders
func (r *UserResult) Learners() []models.User {
	var out []models.User
	for _, u := range r.Users {
		if u.Role.IsLearner() {
			out = append(out, u)
		}
	}
	return out
}

// User looks a user up by id
func (r *UserResult) User(id uuid.UUID) (models.User, bool) {
	for _, u := range r.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// MembersByCommunity groups learners by the community they belong to
func (r *UserResult) MembersByCommunity() map[int64][]models.User {
	out := make(map[int64][]models.User)
	for _, u := range r.Users {
		if u.CommunityID != nil && u.Role.IsLearner() {
			out[*u.CommunityID] = append(out[*u.CommunityID], u)
		}
	}
	return out
}

// RoleCounts counts users per role
func (r *UserResult) RoleCounts() map[string]int {
	out := make(map[string]int, len(models.Roles))
	for _, u := range r.Users {
		out[string(u.Role)]++
	}
	return out
}

type emailBook map[string]int

// unique appends a numeric suffix to the local part of repeated addresses
func (b emailBook) unique(email string) string {
	n := b[email]
	b[email] = n + 1
	if n == 0 {
		return email
	}
	at := strings.LastIndex(email, "@")
	candidate := email[:at] + "." + strconv.Itoa(n+1) + email[at:]
	if _, taken := b[candidate]; taken {
		return b.unique(email)
	}
	b[candidate] = 1
	return candidate
}

// Users creates every account in role order: admins and consultants, network
// supervisors, teachers, one leader per community, and students filling the
// rest of the budget.
func (g *Generator) Users(ctx context.Context, org *OrgResult, vol config.Volumes) (*UserResult, error) {
	if org == nil {
		return nil, apperrors.NewMissingDependencyError(phaseUsers, "organizations")
	}
	if len(org.Schools) == 0 {
		return nil, apperrors.NewMissingDependencyError(phaseUsers, "schools")
	}

	g.logger.Info().Int("users", vol.Users).Msg("Generating users")

	var (
		users   []models.User
		skipped []Skip
		emails  = emailBook{}
	)

	for i := 0; i < vol.Admins; i++ {
		users = append(users, g.newUser(models.RoleAdmin, emails))
	}
	for i := 0; i < vol.Consultants; i++ {
		users = append(users, g.newUser(models.RoleConsultant, emails))
	}

	for i, slice := range supervisorSlices(org.Schools, vol.Supervisors) {
		u := g.newUser(models.RoleSupervisor, emails)
		redID := uuid.New()
		u.RedID = &redID
		u.SupervisedIDs = make([]int64, len(slice))
		for j, s := range slice {
			u.SupervisedIDs[j] = s.ID
		}
		g.logger.Debug().Int("supervisor", i+1).Int("schools", len(slice)).Msg("Assigned network")
		users = append(users, u)
	}

	for i := 0; i < vol.Teachers; i++ {
		u := g.newUser(models.RoleTeacher, emails)
		school := random.MustChoice(g.rnd, org.Schools)
		u.SchoolID = &school.ID
		users = append(users, u)
	}

	leaderOf := make(map[uuid.UUID]models.Community)
	for _, c := range org.Communities {
		school, okSchool := org.School(c.SchoolID)
		gen, okGen := org.Generation(c.GenerationID)
		if !okSchool || !okGen {
			skipped = append(skipped, g.skip(phaseUsers, "leader_scope_unresolved", strconv.FormatInt(c.ID, 10)))
			continue
		}
		u := g.newUser(models.RoleLeader, emails)
		communityID := c.ID
		u.SchoolID = &school.ID
		u.GenerationID = &gen.ID
		u.CommunityID = &communityID
		leaderOf[u.ID] = c
		users = append(users, u)
	}

	remaining := vol.Users - len(users)
	for i := 0; i < remaining; i++ {
		u := g.newUser(models.RoleStudent, emails)
		if skip, ok := g.placeStudent(&u, org); !ok {
			skipped = append(skipped, skip)
		}
		users = append(users, u)
	}

	stored, err := InsertAll(ctx, g.batch, TableProfiles, users)
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles: %w", err)
	}

	var roles []models.UserRole
	for _, u := range stored {
		roles = append(roles, models.RolesFor(u)...)
	}
	storedRoles, err := InsertAll(ctx, g.batch, TableUserRoles, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user roles: %w", err)
	}

	var leaders []models.CommunityLeader
	for _, u := range stored {
		c, ok := leaderOf[u.ID]
		if !ok {
			continue
		}
		leaders = append(leaders, models.CommunityLeader{
			CommunityID:  c.ID,
			UserID:       u.ID,
			SchoolID:     c.SchoolID,
			GenerationID: c.GenerationID,
			AssignedAt:   u.CreatedAt,
		})
	}
	storedLeaders, err := InsertAll(ctx, g.batch, TableCommunityLeaders, leaders)
	if err != nil {
		return nil, fmt.Errorf("failed to link community leaders: %w", err)
	}

	g.logger.Info().
		Int("users", len(stored)).
		Int("roles", len(storedRoles)).
		Int("leaders", len(storedLeaders)).
		Int("skipped", len(skipped)).
		Msg("Users generated")

	return &UserResult{
		Users:   stored,
		Roles:   storedRoles,
		Leaders: storedLeaders,
		Skipped: skipped,
	}, nil
}

func (g *Generator) newUser(role models.RoleType, emails emailBook) models.User {
	name := g.rnd.SpanishName()
	level := g.scenario.Engagement(g.rnd, role)
	createdAt := g.daysAgo(30, 365)

	lastActive := g.now.Add(-time.Duration(g.rnd.IntBetween(0, lastActiveHours[level])) * time.Hour)
	if lastActive.Before(createdAt) {
		lastActive = createdAt
	}

	return models.User{
		ID:              uuid.New(),
		FirstName:       name.First,
		LastName:        name.Last(),
		Email:           emails.unique(g.rnd.Email(name.Full())),
		Role:            role,
		EngagementLevel: level,
		ActivityPattern: activityPatterns[level],
		PasswordHash:    g.passwordHash,
		CreatedAt:       createdAt,
		LastActiveAt:    lastActive,
	}
}

// placeStudent scopes a student to a random school, then a generation of that
// school, then a community of that generation. A lookup miss leaves the
// student with the scope resolved so far.
func (g *Generator) placeStudent(u *models.User, org *OrgResult) (Skip, bool) {
	school := random.MustChoice(g.rnd, org.Schools)
	u.SchoolID = &school.ID

	gen, err := random.Choice(g.rnd, org.GenerationsOf(school.ID))
	if err != nil {
		return g.skip(phaseUsers, "student_without_generation", u.ID.String()), false
	}
	u.GenerationID = &gen.ID

	community, err := random.Choice(g.rnd, org.CommunitiesOf(gen.ID))
	if err != nil {
		return g.skip(phaseUsers, "student_without_community", u.ID.String()), false
	}
	u.CommunityID = &community.ID
	return Skip{}, true
}

// supervisorSlices splits schools into contiguous runs, one per supervisor.
// With more supervisors than schools the runs wrap around.
func supervisorSlices(schools []models.School, supervisors int) [][]models.School {
	if supervisors <= 0 || len(schools) == 0 {
		return nil
	}
	size := (len(schools) + supervisors - 1) / supervisors
	out := make([][]models.School, supervisors)
	for i := range out {
		start := (i * size) % len(schools)
		end := start + size
		if end > len(schools) {
			end = len(schools)
		}
		out[i] = schools[start:end]
	}
	return out
}
