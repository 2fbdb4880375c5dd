package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/apperrors"
	"github.com/yigit/fneseed/internal/pkg/random"
)

const phaseCourses = "courses"

// Difficulty tiers
const (
	DifficultyBasic        = "básico"
	DifficultyIntermediate = "intermedio"
	DifficultyAdvanced     = "avanzado"
)

// Course scenarios recorded in course metadata
const (
	CourseHighEngagement     = "high_engagement"
	CourseMixedEngagement    = "mixed_engagement"
	CourseStandardEngagement = "standard_engagement"
)

type subjectTemplate struct {
	subject      string
	topics       []string
	difficulties []string
	weeks        []int
}

var allDifficulties = []string{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced}

var subjectTemplates = []subjectTemplate{
	{
		subject:      "Matemáticas",
		topics:       []string{"Álgebra", "Geometría", "Estadística y Probabilidad", "Números y Operaciones"},
		difficulties: allDifficulties,
		weeks:        []int{8, 12, 16},
	},
	{
		subject:      "Lenguaje y Comunicación",
		topics:       []string{"Comprensión Lectora", "Producción de Textos", "Literatura Chilena", "Comunicación Oral"},
		difficulties: allDifficulties,
		weeks:        []int{6, 10, 14},
	},
	{
		subject:      "Historia y Geografía",
		topics:       []string{"Historia de Chile", "Geografía Regional", "Formación Ciudadana"},
		difficulties: []string{DifficultyBasic, DifficultyIntermediate},
		weeks:        []int{8, 12},
	},
	{
		subject:      "Ciencias Naturales",
		topics:       []string{"Biología", "Química", "Física", "Ciencias de la Tierra"},
		difficulties: allDifficulties,
		weeks:        []int{10, 14, 18},
	},
	{
		subject:      "Tecnología",
		topics:       []string{"Pensamiento Computacional", "Programación", "Robótica Educativa"},
		difficulties: allDifficulties,
		weeks:        []int{6, 8, 12},
	},
	{
		subject:      "Desarrollo Profesional Docente",
		topics:       []string{"Evaluación Formativa", "Aprendizaje Colaborativo", "Liderazgo Pedagógico"},
		difficulties: []string{DifficultyIntermediate, DifficultyAdvanced},
		weeks:        []int{4, 6, 8},
	},
}

var difficultyScores = map[string][2]int{
	DifficultyBasic:        {1, 3},
	DifficultyIntermediate: {4, 7},
	DifficultyAdvanced:     {8, 10},
}

var enrollmentStatuses = []random.Weighted[string]{
	random.W("active", 4),
	random.W("paused", 1),
	random.W("completed", 1),
	random.W("dropped", 1),
}

var motivationLevels = []models.MotivationLevel{
	models.MotivationHigh, models.MotivationMedium, models.MotivationLow,
}

var (
	assignmentTypes = []string{"tarea", "proyecto", "evaluacion", "ensayo"}
	maxScores       = []int{10, 20, 50, 100}
)

const outOfSchoolEnrollChance = 0.3

// CourseResult holds the stored catalog, enrollments and assignments
type CourseResult struct {
	Courses     []models.Course
	Enrollments []models.Enrollment
	Assignments []models.Assignment
}

// Course looks a course up by id
func (r *CourseResult) Course(id int64) (models.Course, bool) {
	for _, c := range r.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// EnrollmentsOf returns the enrollments of a course
func (r *CourseResult) EnrollmentsOf(courseID int64) []models.Enrollment {
	var out []models.Enrollment
	for _, e := range r.Enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out
}

// Courses creates the catalog, enrolls every learner and adds assignments
func (g *Generator) Courses(ctx context.Context, org *OrgResult, users *UserResult, vol config.Volumes) (*CourseResult, error) {
	if org == nil {
		return nil, apperrors.NewMissingDependencyError(phaseCourses, "organizations")
	}
	if users == nil {
		return nil, apperrors.NewMissingDependencyError(phaseCourses, "users")
	}
	teachers := users.ByRole(models.RoleTeacher)
	if vol.Courses > 0 && len(teachers) == 0 {
		return nil, apperrors.NewMissingDependencyError(phaseCourses, "teachers")
	}

	g.logger.Info().Int("courses", vol.Courses).Msg("Generating courses")

	courses := make([]models.Course, 0, vol.Courses)
	for i := 0; i < vol.Courses; i++ {
		courses = append(courses, g.newCourse(random.MustChoice(g.rnd, teachers), org))
	}
	storedCourses, err := InsertAll(ctx, g.batch, TableCourses, courses)
	if err != nil {
		return nil, fmt.Errorf("failed to generate courses: %w", err)
	}

	var enrollments []models.Enrollment
	for _, learner := range users.Learners() {
		enrollments = append(enrollments, g.enroll(learner, storedCourses)...)
	}
	storedEnrollments, err := InsertAll(ctx, g.batch, TableEnrollments, enrollments)
	if err != nil {
		return nil, fmt.Errorf("failed to generate enrollments: %w", err)
	}

	var assignments []models.Assignment
	for _, c := range storedCourses {
		assignments = append(assignments, g.assignmentsFor(c)...)
	}
	storedAssignments, err := InsertAll(ctx, g.batch, TableAssignments, assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignments: %w", err)
	}

	g.logger.Info().
		Int("courses", len(storedCourses)).
		Int("enrollments", len(storedEnrollments)).
		Int("assignments", len(storedAssignments)).
		Msg("Courses generated")

	return &CourseResult{
		Courses:     storedCourses,
		Enrollments: storedEnrollments,
		Assignments: storedAssignments,
	}, nil
}

func (g *Generator) newCourse(teacher models.User, org *OrgResult) models.Course {
	tpl := random.MustChoice(g.rnd, subjectTemplates)
	topic := random.MustChoice(g.rnd, tpl.topics)
	difficulty := random.MustChoice(g.rnd, tpl.difficulties)
	weeks := random.MustChoice(g.rnd, tpl.weeks)
	bounds := difficultyScores[difficulty]

	schoolID := random.MustChoice(g.rnd, org.Schools).ID
	if teacher.SchoolID != nil {
		schoolID = *teacher.SchoolID
	}

	start := g.daysAgo(30, 240)
	course := models.Course{
		Title:           fmt.Sprintf("%s: %s (%s)", tpl.subject, topic, capitalize(difficulty)),
		Description:     fmt.Sprintf("Curso de %s centrado en %s, nivel %s.", tpl.subject, strings.ToLower(topic), difficulty),
		Subject:         tpl.subject,
		Topic:           topic,
		Difficulty:      difficulty,
		DifficultyScore: g.rnd.IntBetween(bounds[0], bounds[1]),
		DurationWeeks:   weeks,
		EstimatedHours:  weeks * g.rnd.IntBetween(2, 6),
		TotalLessons:    g.rnd.IntBetween(8, 24),
		TeacherID:       teacher.ID,
		SchoolID:        schoolID,
		StartDate:       start,
		EndDate:         start.Add(time.Duration(weeks) * 7 * 24 * time.Hour),
		Tags:            []string{strings.ToLower(tpl.subject), strings.ToLower(topic), difficulty},
		Scenario:        courseScenario(difficulty),
		CreatedAt:       start.Add(-time.Duration(g.rnd.IntBetween(7, 60)) * 24 * time.Hour),
	}
	if difficulty == DifficultyAdvanced {
		course.Prerequisites = []string{
			fmt.Sprintf("%s (Intermedio)", topic),
			fmt.Sprintf("Fundamentos de %s", tpl.subject),
		}
	}
	return course
}

// enroll picks 2 to 5 distinct courses for a learner, drawn from the courses
// of the learner's school plus each other course with a 30% chance.
func (g *Generator) enroll(learner models.User, courses []models.Course) []models.Enrollment {
	var available []models.Course
	for _, c := range courses {
		if learner.SchoolID != nil && c.SchoolID == *learner.SchoolID {
			available = append(available, c)
			continue
		}
		if g.rnd.Chance(outOfSchoolEnrollChance) {
			available = append(available, c)
		}
	}

	picked := random.Sample(g.rnd, available, g.rnd.IntBetween(2, 5))
	out := make([]models.Enrollment, 0, len(picked))
	for _, c := range picked {
		out = append(out, models.Enrollment{
			UserID:     learner.ID,
			CourseID:   c.ID,
			EnrolledAt: g.rnd.DateBetween(c.StartDate, minTime(c.EndDate, g.now)),
			Status:     random.MustWeightedChoice(g.rnd, enrollmentStatuses),
			Motivation: random.MustChoice(g.rnd, motivationLevels),
		})
	}
	return out
}

// assignmentsFor spreads 3 to 8 assignments evenly over the course, the last
// one due on the end date.
func (g *Generator) assignmentsFor(c models.Course) []models.Assignment {
	n := g.rnd.IntBetween(3, 8)
	step := c.EndDate.Sub(c.StartDate) / time.Duration(n)

	out := make([]models.Assignment, 0, n)
	for i := 0; i < n; i++ {
		kind := random.MustChoice(g.rnd, assignmentTypes)
		out = append(out, models.Assignment{
			CourseID:    c.ID,
			Title:       fmt.Sprintf("%s %d: %s", capitalize(kind), i+1, c.Topic),
			Description: fmt.Sprintf("Actividad %d de %d del curso %s.", i+1, n, c.Title),
			Type:        kind,
			DueDate:     c.StartDate.Add(step * time.Duration(i+1)),
			MaxScore:    random.MustChoice(g.rnd, maxScores),
			CreatedAt:   c.StartDate,
		})
	}
	return out
}

func courseScenario(difficulty string) string {
	switch difficulty {
	case DifficultyAdvanced:
		return CourseHighEngagement
	case DifficultyBasic:
		return CourseMixedEngagement
	default:
		return CourseStandardEngagement
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
