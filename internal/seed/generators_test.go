package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
	"github.com/yigit/fneseed/internal/pkg/validation"
	"github.com/yigit/fneseed/internal/scenario"
	"github.com/yigit/fneseed/internal/store"
)

const testTag = "test-seed"

var testNow = time.Date(2024, 10, 15, 14, 0, 0, 0, time.UTC)

func testVolumes() config.Volumes {
	return config.Volumes{
		Users:       50,
		Schools:     2,
		Admins:      2,
		Consultants: 2,
		Supervisors: 1,
		Teachers:    5,
		Courses:     10,
		Activities:  300,
		MaxSessions: 200,
	}
}

func newTestGenerator(mem *store.MemoryStore, seed uint64) *Generator {
	return NewGenerator(
		NewBatcher(mem, testTag, 25, 0, zerolog.Nop()),
		scenario.Default(),
		random.NewSampler(seed),
		testNow,
		"$2a$12$hash",
		zerolog.Nop(),
	)
}

type phases struct {
	org      *OrgResult
	users    *UserResult
	courses  *CourseResult
	activity *ActivityResult
	progress *ProgressResult
}

func runPhases(t *testing.T, g *Generator, vol config.Volumes) phases {
	t.Helper()
	ctx := context.Background()
	var p phases
	var err error

	p.org, err = g.Organizations(ctx, vol)
	require.NoError(t, err)
	p.users, err = g.Users(ctx, p.org, vol)
	require.NoError(t, err)
	p.courses, err = g.Courses(ctx, p.org, p.users, vol)
	require.NoError(t, err)
	p.activity, err = g.Activity(ctx, p.org, p.users, vol)
	require.NoError(t, err)
	p.progress, err = g.Progress(ctx, p.users, p.courses, vol)
	require.NoError(t, err)
	return p
}

func TestOrganizationsTree(t *testing.T) {
	mem := store.NewMemoryStore()
	vol := testVolumes()
	vol.Schools = 5

	org, err := newTestGenerator(mem, 1).Organizations(context.Background(), vol)
	require.NoError(t, err)

	require.Len(t, org.Schools, 5)
	require.Len(t, org.Generations, 10)
	require.Len(t, org.Communities, 20)

	seen := map[int64]bool{}
	for _, s := range org.Schools {
		assert.GreaterOrEqual(t, s.ID, int64(schoolIDMin))
		assert.LessOrEqual(t, s.ID, int64(schoolIDMax))
		assert.False(t, seen[s.ID], "school ids are distinct")
		seen[s.ID] = true
		assert.Len(t, org.GenerationsOf(s.ID), config.GenerationsPerSchool)
	}

	sc := scenario.Default()
	for _, gen := range org.Generations {
		_, ok := org.School(gen.SchoolID)
		assert.True(t, ok, "generation references a stored school")
		assert.Len(t, org.CommunitiesOf(gen.ID), config.CommunitiesPerGeneration)
	}
	for _, c := range org.Communities {
		gen, ok := org.Generation(c.GenerationID)
		require.True(t, ok, "community references a stored generation")
		assert.Equal(t, gen.SchoolID, c.SchoolID)

		archetype, ok := sc.Archetype(c.Scenario)
		require.True(t, ok, c.Scenario)
		assert.True(t, archetype.HealthScore.Contains(c.HealthScore),
			"%s health %d outside %v", c.Scenario, c.HealthScore, archetype.HealthScore)
	}

	assert.Equal(t, 5, mem.Len(TableSchools))
	assert.Equal(t, 20, mem.Len(TableCommunities))
}

func TestUsersRoleLayout(t *testing.T) {
	mem := store.NewMemoryStore()
	g := newTestGenerator(mem, 2)
	vol := testVolumes()

	org, err := g.Organizations(context.Background(), vol)
	require.NoError(t, err)
	users, err := g.Users(context.Background(), org, vol)
	require.NoError(t, err)

	require.Len(t, users.Users, 50)
	counts := users.RoleCounts()
	assert.Equal(t, 2, counts[string(models.RoleAdmin)])
	assert.Equal(t, 2, counts[string(models.RoleConsultant)])
	assert.Equal(t, 1, counts[string(models.RoleSupervisor)])
	assert.Equal(t, 5, counts[string(models.RoleTeacher)])
	assert.Equal(t, 8, counts[string(models.RoleLeader)])
	assert.Equal(t, 32, counts[string(models.RoleStudent)])
	assert.Empty(t, users.Skipped)

	leadersByCommunity := map[int64]int{}
	for _, l := range users.Leaders {
		leadersByCommunity[l.CommunityID]++
		u, ok := users.User(l.UserID)
		require.True(t, ok)
		assert.Equal(t, models.RoleLeader, u.Role)
		assert.Equal(t, l.CommunityID, *u.CommunityID)
	}
	for _, c := range org.Communities {
		assert.Equal(t, 1, leadersByCommunity[c.ID], "community %d has exactly one leader", c.ID)
	}

	emails := map[string]bool{}
	for _, u := range users.Users {
		assert.Regexp(t, validation.CompiledPatterns.Email, u.Email)
		assert.False(t, emails[u.Email], "duplicate email %s", u.Email)
		emails[u.Email] = true

		if u.Role == models.RoleStudent {
			require.NotNil(t, u.CommunityID)
			gen, ok := org.Generation(*u.GenerationID)
			require.True(t, ok)
			assert.Equal(t, *u.SchoolID, gen.SchoolID)
			var inGen bool
			for _, c := range org.CommunitiesOf(gen.ID) {
				inGen = inGen || c.ID == *u.CommunityID
			}
			assert.True(t, inGen, "student community belongs to the student's generation")
		}
	}

	supervisor := users.ByRole(models.RoleSupervisor)[0]
	require.NotNil(t, supervisor.RedID)
	assert.ElementsMatch(t, []int64{org.Schools[0].ID, org.Schools[1].ID}, supervisor.SupervisedIDs)

	// one role row per user, plus one extra per additional supervised school
	assert.Len(t, users.Roles, 51)
	assert.Equal(t, 51, mem.Len(TableUserRoles))
	assert.Equal(t, 8, mem.Len(TableCommunityLeaders))
}

func TestUsersSkipsLeaderWithUnresolvedScope(t *testing.T) {
	mem := store.NewMemoryStore()
	g := newTestGenerator(mem, 3)

	org := &OrgResult{
		Schools:     []models.School{{ID: 90000001}},
		Generations: []models.Generation{{ID: 1, SchoolID: 90000001}},
		Communities: []models.Community{
			{ID: 1, SchoolID: 90000001, GenerationID: 1},
			{ID: 2, SchoolID: 90000001, GenerationID: 99},
		},
	}
	vol := config.Volumes{Users: 10, Schools: 1, Teachers: 1}

	users, err := g.Users(context.Background(), org, vol)
	require.NoError(t, err)

	require.Len(t, users.Skipped, 1)
	assert.Equal(t, "leader_scope_unresolved", users.Skipped[0].Reason)
	assert.Equal(t, "2", users.Skipped[0].Ref)
	assert.Len(t, users.Leaders, 1)
	assert.Len(t, users.Users, 10, "students fill the budget left by the skipped leader")
}

func TestUsersRequireOrganizations(t *testing.T) {
	_, err := newTestGenerator(store.NewMemoryStore(), 1).Users(context.Background(), nil, testVolumes())
	assert.ErrorIs(t, err, apperrors.ErrMissingDependency)
}

func TestSupervisorSlices(t *testing.T) {
	schools := make([]models.School, 12)
	for i := range schools {
		schools[i] = models.School{ID: int64(i)}
	}

	slices := supervisorSlices(schools, 6)
	require.Len(t, slices, 6)
	for i, s := range slices {
		require.Len(t, s, 2)
		assert.Equal(t, int64(2*i), s[0].ID)
		assert.Equal(t, int64(2*i+1), s[1].ID)
	}

	wrapped := supervisorSlices(schools[:2], 3)
	require.Len(t, wrapped, 3)
	for _, s := range wrapped {
		assert.Len(t, s, 1)
	}

	assert.Nil(t, supervisorSlices(schools, 0))
}

func TestEmailBookSuffixesDuplicates(t *testing.T) {
	book := emailBook{}
	assert.Equal(t, "ana.diaz@fne.cl", book.unique("ana.diaz@fne.cl"))
	assert.Equal(t, "ana.diaz.2@fne.cl", book.unique("ana.diaz@fne.cl"))
	assert.Equal(t, "ana.diaz.3@fne.cl", book.unique("ana.diaz@fne.cl"))
	assert.Equal(t, "ana.diaz@colegio.edu", book.unique("ana.diaz@colegio.edu"))
}

func TestCoursesCatalog(t *testing.T) {
	mem := store.NewMemoryStore()
	p := runPhases(t, newTestGenerator(mem, 4), testVolumes())

	require.Len(t, p.courses.Courses, 10)
	teachers := map[uuid.UUID]models.User{}
	for _, u := range p.users.ByRole(models.RoleTeacher) {
		teachers[u.ID] = u
	}

	for _, c := range p.courses.Courses {
		bounds := difficultyScores[c.Difficulty]
		assert.GreaterOrEqual(t, c.DifficultyScore, bounds[0], c.Title)
		assert.LessOrEqual(t, c.DifficultyScore, bounds[1], c.Title)
		assert.Equal(t, c.StartDate.Add(time.Duration(c.DurationWeeks)*7*24*time.Hour), c.EndDate)
		assert.GreaterOrEqual(t, c.EstimatedHours, 2*c.DurationWeeks)
		assert.LessOrEqual(t, c.EstimatedHours, 6*c.DurationWeeks)
		assert.Equal(t, c.Difficulty == DifficultyAdvanced, len(c.Prerequisites) > 0)
		assert.Equal(t, courseScenario(c.Difficulty), c.Scenario)

		teacher, ok := teachers[c.TeacherID]
		require.True(t, ok, "course taught by a seeded teacher")
		assert.Equal(t, *teacher.SchoolID, c.SchoolID)

		var due []time.Time
		for _, a := range p.courses.Assignments {
			if a.CourseID == c.ID {
				due = append(due, a.DueDate)
				assert.Contains(t, maxScores, a.MaxScore)
			}
		}
		require.GreaterOrEqual(t, len(due), 3)
		require.LessOrEqual(t, len(due), 8)
		for i := 1; i < len(due); i++ {
			assert.True(t, due[i].After(due[i-1]), "due dates increase")
		}
		assert.WithinDuration(t, c.EndDate, due[len(due)-1], time.Minute)
	}
}

func TestEnrollmentsOnlyForLearners(t *testing.T) {
	mem := store.NewMemoryStore()
	p := runPhases(t, newTestGenerator(mem, 5), testVolumes())

	perUser := map[uuid.UUID]map[int64]bool{}
	for _, e := range p.courses.Enrollments {
		u, ok := p.users.User(e.UserID)
		require.True(t, ok)
		assert.True(t, u.Role.IsLearner(), "%s enrolled", u.Role)

		if perUser[e.UserID] == nil {
			perUser[e.UserID] = map[int64]bool{}
		}
		assert.False(t, perUser[e.UserID][e.CourseID], "duplicate enrollment")
		perUser[e.UserID][e.CourseID] = true

		c, ok := p.courses.Course(e.CourseID)
		require.True(t, ok)
		assert.False(t, e.EnrolledAt.Before(c.StartDate))
		assert.Contains(t, []string{"active", "paused", "completed", "dropped"}, e.Status)
	}
	for _, courses := range perUser {
		assert.LessOrEqual(t, len(courses), 5)
	}
}

func TestActivityParticipants(t *testing.T) {
	mem := store.NewMemoryStore()
	vol := testVolumes()
	p := runPhases(t, newTestGenerator(mem, 6), vol)

	assert.Equal(t, vol.Activities, len(p.activity.Activities)+len(p.activity.Skipped),
		"every attempt is either stored or counted as skipped")
	require.NotEmpty(t, p.activity.Activities)

	members := p.users.MembersByCommunity()
	byActivity := map[int64][]models.ActivityParticipant{}
	for _, part := range p.activity.Participants {
		byActivity[part.ActivityID] = append(byActivity[part.ActivityID], part)
	}

	sc := scenario.Default()
	windowStart := testNow.Add(-sc.ActivityWindow)
	var solo, meetings int
	for _, a := range p.activity.Activities {
		assert.False(t, a.CreatedAt.Before(windowStart))
		assert.False(t, a.CreatedAt.After(testNow))
		assert.LessOrEqual(t, a.ParticipantCount, len(members[a.CommunityID]))

		if a.Type == models.ActivityMeeting {
			meetings++
			archetype, ok := sc.Archetype(a.Metadata["community_scenario"].(string))
			require.True(t, ok)
			rate := a.Metadata["attendance_rate"].(int)
			band := archetype.Behavior.AttendanceRate()
			assert.True(t, band.Contains(rate), "attendance %d outside %v for %s", rate, band, archetype.Behavior.MeetingAttendance)
		}

		parts := byActivity[a.ID]
		if a.ParticipantCount < 2 {
			solo++
			assert.Empty(t, parts, "solo activities have no participant rows")
			continue
		}
		require.Len(t, parts, a.ParticipantCount)

		assert.Equal(t, a.UserID, parts[0].UserID)
		assert.Equal(t, models.ParticipantOrganizer, parts[0].Role)

		seen := map[uuid.UUID]bool{}
		for i, part := range parts {
			assert.False(t, seen[part.UserID], "participants are distinct")
			seen[part.UserID] = true
			assert.Equal(t, a.CreatedAt.Add(time.Duration(i)*time.Minute), part.JoinedAt)

			var member bool
			for _, m := range members[a.CommunityID] {
				member = member || m.ID == part.UserID
			}
			assert.True(t, member, "participant belongs to the community")
		}
	}
	assert.NotZero(t, meetings)
	assert.NotZero(t, solo, "some messages and documents reach nobody else")
}

func TestActivityFallsBackToAverageScenario(t *testing.T) {
	mem := store.NewMemoryStore()
	g := newTestGenerator(mem, 9)
	g.scenario.SkipEscape = 1 // every attempt passes the temporal filter

	communityID := int64(1)
	org := &OrgResult{Communities: []models.Community{{ID: communityID, Scenario: "retired", HealthScore: 60}}}
	users := &UserResult{}
	for i := 0; i < 6; i++ {
		users.Users = append(users.Users, models.User{ID: uuid.New(), Role: models.RoleStudent, CommunityID: &communityID})
	}

	res, err := g.Activity(context.Background(), org, users, config.Volumes{Activities: 40})
	require.NoError(t, err)
	assert.Len(t, res.Activities, 40)
	assert.Empty(t, res.Skipped)

	average, ok := g.scenario.Archetype(scenario.Average)
	require.True(t, ok)
	for _, a := range res.Activities {
		if a.Type == models.ActivityMeeting {
			assert.True(t, average.Behavior.AttendanceRate().Contains(a.Metadata["attendance_rate"].(int)))
		}
	}
}

func TestActivitySkipsEmptyCommunities(t *testing.T) {
	g := newTestGenerator(store.NewMemoryStore(), 7)
	g.scenario.SkipEscape = 0 // never escape the temporal filter
	org := &OrgResult{Communities: []models.Community{{ID: 1, Scenario: scenario.Average, HealthScore: 60}}}

	res, err := g.Activity(context.Background(), org, &UserResult{}, config.Volumes{Activities: 50})
	require.NoError(t, err)
	assert.Empty(t, res.Activities)
	require.Len(t, res.Skipped, 50)
	for _, s := range res.Skipped {
		assert.Contains(t, []string{SkipOffHours, SkipEmptyCommunity}, s.Reason)
	}
}

func TestActivityTypeWeightsFollowBehavior(t *testing.T) {
	g := newTestGenerator(store.NewMemoryStore(), 1)
	inactive, ok := g.scenario.Archetype(scenario.Inactive)
	require.True(t, ok)

	weights := g.typeWeights(inactive.Behavior)
	require.Len(t, weights, len(models.ActivityTypes))
	for i, w := range weights {
		assert.Equal(t, models.ActivityTypes[i], w.Value)
	}
	assert.InDelta(t, 0.40*0.5, weights[0].Weight, 1e-9)
	assert.InDelta(t, 0.10*0.2, weights[4].Weight, 1e-9)

	assert.Equal(t, 1.0, communityWeight(0))
	assert.Equal(t, 1.0, communityWeight(10))
	assert.Equal(t, 5.0, communityWeight(100))
}

func TestCompletionProbabilityIsClamped(t *testing.T) {
	g := newTestGenerator(store.NewMemoryStore(), 1)
	assert.Equal(t, 0.95, g.CompletionProbability(models.EngagementVeryHigh, 1, models.MotivationHigh))
	assert.Equal(t, 0.10, g.CompletionProbability(models.EngagementVeryLow, 10, models.MotivationLow))
	assert.InDelta(t, 0.35, g.CompletionProbability(models.EngagementMedium, 6, models.MotivationMedium), 1e-9)
}

func TestProgressHistory(t *testing.T) {
	mem := store.NewMemoryStore()
	vol := testVolumes()
	p := runPhases(t, newTestGenerator(mem, 8), vol)

	enrollments := len(p.courses.Enrollments)
	require.NotZero(t, enrollments)
	assert.Len(t, p.progress.TimeTracking, enrollments)
	assert.LessOrEqual(t, len(p.progress.Completions), enrollments)

	wantSessions := 8 * enrollments
	if vol.MaxSessions < wantSessions {
		wantSessions = vol.MaxSessions
	}
	assert.Len(t, p.progress.Sessions, wantSessions)

	completed := map[string]bool{}
	for _, c := range p.progress.Completions {
		assert.False(t, c.CompletedAt.After(testNow), "completion dated after the clock")
		assert.GreaterOrEqual(t, c.FinalScore, float64(MinFinalScore))
		assert.LessOrEqual(t, c.FinalScore, float64(MaxFinalScore))
		assert.Equal(t, c.FinalScore >= 70, c.CertificateIssued)
		key := fmt.Sprint(c.UserID, "/", c.CourseID)
		assert.False(t, completed[key], "one completion per enrollment")
		completed[key] = true
	}
	for _, tt := range p.progress.TimeTracking {
		assert.False(t, tt.LastAccessed.After(testNow))
		key := fmt.Sprint(tt.UserID, "/", tt.CourseID)
		assert.Equal(t, completed[key], tt.ProgressPercentage == 100, key)
		assert.GreaterOrEqual(t, tt.TotalMinutes, 0)
	}
	for _, s := range p.progress.Sessions {
		assert.Equal(t, time.Duration(s.DurationMinutes)*time.Minute, s.EndedAt.Sub(s.StartedAt))
		assert.NotEmpty(t, s.IPAddress)
		assert.NotEmpty(t, s.UserAgent)
	}

	assignments := map[int64]models.Assignment{}
	for _, a := range p.courses.Assignments {
		assignments[a.ID] = a
	}
	for _, s := range p.progress.Submissions {
		a := assignments[s.AssignmentID]
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, float64(a.MaxScore))
		assert.Equal(t, s.SubmittedAt.After(a.DueDate), s.IsLate)
		assert.False(t, s.SubmittedAt.After(testNow))
	}
}

func TestProgressRequiresCourses(t *testing.T) {
	_, err := newTestGenerator(store.NewMemoryStore(), 1).Progress(context.Background(), &UserResult{}, nil, testVolumes())
	assert.ErrorIs(t, err, apperrors.ErrMissingDependency)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, "courses", custom.Details["dependency"])
}
