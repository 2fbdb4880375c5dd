package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/config"
	"github.com/yigit/fneseed/internal/pkg/random"
)

const (
	schoolIDMin = 90_000_000
	schoolIDMax = 99_999_999
)

var (
	schoolPrefixes = []string{"Colegio", "Escuela", "Liceo", "Instituto"}
	schoolNames    = []string{
		"San Martín", "Los Andes", "Gabriela Mistral", "Pablo Neruda", "Arturo Prat",
		"Bernardo O'Higgins", "Santa María", "Valle Central", "La Araucanía", "Del Pacífico",
		"Violeta Parra", "Manuel Rodríguez",
	}
	gradeRanges = []string{"1° a 4° Básico", "5° a 8° Básico"}
)

// OrgResult is the organization tree as stored
type OrgResult struct {
	Schools     []models.School
	Generations []models.Generation
	Communities []models.Community
}

// School looks up a stored school by id
func (r *OrgResult) School(id int64) (models.School, bool) {
	for _, s := range r.Schools {
		if s.ID == id {
			return s, true
		}
	}
	return models.School{}, false
}

// Generation looks up a stored generation by id
func (r *OrgResult) Generation(id int64) (models.Generation, bool) {
	for _, g := range r.Generations {
		if g.ID == id {
			return g, true
		}
	}
	return models.Generation{}, false
}

// GenerationsOf returns the generations of a school
func (r *OrgResult) GenerationsOf(schoolID int64) []models.Generation {
	var out []models.Generation
	for _, g := range r.Generations {
		if g.SchoolID == schoolID {
			out = append(out, g)
		}
	}
	return out
}

// CommunitiesOf returns the communities of a generation
func (r *OrgResult) CommunitiesOf(generationID int64) []models.Community {
	var out []models.Community
	for _, c := range r.Communities {
		if c.GenerationID == generationID {
			out = append(out, c)
		}
	}
	return out
}

// Organizations creates schools, then two generations per stored school, then
// two communities per stored generation. Children always reference the ids
// the store returned, never the ones proposed before insert.
func (g *Generator) Organizations(ctx context.Context, vol config.Volumes) (*OrgResult, error) {
	g.logger.Info().Int("schools", vol.Schools).Msg("Generating organizations")

	ids := g.schoolIDs(vol.Schools)
	schools := make([]models.School, vol.Schools)
	for i := range schools {
		schools[i] = models.School{
			ID:             ids[i],
			Name:           g.schoolName(i),
			HasGenerations: true,
			CreatedAt:      g.daysAgo(365, 3*365),
		}
	}

	storedSchools, err := InsertAll(ctx, g.batch, TableSchools, schools)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schools: %w", err)
	}

	var generations []models.Generation
	for _, school := range storedSchools {
		for i := 0; i < config.GenerationsPerSchool; i++ {
			year := g.now.Year() - i
			generations = append(generations, models.Generation{
				SchoolID:   school.ID,
				Name:       fmt.Sprintf("Generación %d", year),
				GradeRange: gradeRanges[i%len(gradeRanges)],
				Year:       year,
				CreatedAt:  school.CreatedAt.Add(time.Duration(g.rnd.IntBetween(1, 90)) * 24 * time.Hour),
			})
		}
	}

	storedGenerations, err := InsertAll(ctx, g.batch, TableGenerations, generations)
	if err != nil {
		return nil, fmt.Errorf("failed to generate generations: %w", err)
	}

	archetypes := g.scenario.ArchetypeWeights()
	var communities []models.Community
	for _, gen := range storedGenerations {
		for i := 0; i < config.CommunitiesPerGeneration; i++ {
			archetype, err := random.WeightedChoice(g.rnd, archetypes)
			if err != nil {
				return nil, fmt.Errorf("failed to pick community scenario: %w", err)
			}
			communities = append(communities, models.Community{
				SchoolID:     gen.SchoolID,
				GenerationID: gen.ID,
				Name:         fmt.Sprintf("Comunidad %s %c", gen.Name, 'A'+i),
				Scenario:     archetype.Name,
				HealthScore:  g.rnd.IntBetween(archetype.HealthScore.Min, archetype.HealthScore.Max),
				CreatedAt:    gen.CreatedAt.Add(time.Duration(g.rnd.IntBetween(1, 30)) * 24 * time.Hour),
			})
		}
	}

	storedCommunities, err := InsertAll(ctx, g.batch, TableCommunities, communities)
	if err != nil {
		return nil, fmt.Errorf("failed to generate communities: %w", err)
	}

	g.logger.Info().
		Int("schools", len(storedSchools)).
		Int("generations", len(storedGenerations)).
		Int("communities", len(storedCommunities)).
		Msg("Organizations generated")

	return &OrgResult{
		Schools:     storedSchools,
		Generations: storedGenerations,
		Communities: storedCommunities,
	}, nil
}

// schoolIDs draws n distinct ids from the reserved high range
func (g *Generator) schoolIDs(n int) []int64 {
	seen := make(map[int64]bool, n)
	ids := make([]int64, 0, n)
	for len(ids) < n {
		id := int64(g.rnd.IntBetween(schoolIDMin, schoolIDMax))
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func (g *Generator) schoolName(i int) string {
	prefix := random.MustChoice(g.rnd, schoolPrefixes)
	name := schoolNames[i%len(schoolNames)]
	if i >= len(schoolNames) {
		return fmt.Sprintf("%s %s %d (Prueba)", prefix, name, i/len(schoolNames)+1)
	}
	return fmt.Sprintf("%s %s (Prueba)", prefix, name)
}
