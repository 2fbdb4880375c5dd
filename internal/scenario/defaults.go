package scenario

import (
	"time"

	"github.com/yigit/fneseed/internal/app/models"
	"github.com/yigit/fneseed/internal/pkg/random"
)

// Default returns the built-in scenario tables
func Default() *Config {
	return &Config{
		Archetypes: []Archetype{
			{
				Name:               HighPerformance,
				Weight:             0.25,
				CompletionRate:     Range{80, 95},
				DailyActivity:      Range{15, 30},
				CollaborationIndex: Range{75, 95},
				HealthScore:        Range{80, 100},
				Engagement:         Range{80, 95},
				CrossCommunity:     Range{20, 40},
				Behavior:           Behavior{"high", "frequent", "excellent", "active"},
			},
			{
				Name:               Average,
				Weight:             0.45,
				CompletionRate:     Range{55, 75},
				DailyActivity:      Range{5, 15},
				CollaborationIndex: Range{45, 70},
				HealthScore:        Range{55, 79},
				Engagement:         Range{50, 75},
				CrossCommunity:     Range{5, 20},
				Behavior:           Behavior{"moderate", "occasional", "good", "limited"},
			},
			{
				Name:               Struggling,
				Weight:             0.20,
				CompletionRate:     Range{25, 50},
				DailyActivity:      Range{1, 6},
				CollaborationIndex: Range{20, 45},
				HealthScore:        Range{25, 54},
				Engagement:         Range{25, 50},
				CrossCommunity:     Range{0, 8},
				Behavior:           Behavior{"low", "rare", "poor", "none"},
			},
			{
				Name:               Inactive,
				Weight:             0.10,
				CompletionRate:     Range{0, 20},
				DailyActivity:      Range{0, 2},
				CollaborationIndex: Range{0, 20},
				HealthScore:        Range{0, 24},
				Engagement:         Range{0, 25},
				CrossCommunity:     Range{0, 3},
				Behavior:           Behavior{"low", "rare", "poor", "none"},
			},
		},

		ActivityTypeWeights: map[models.ActivityType]float64{
			models.ActivityMessage:       0.40,
			models.ActivityDocumentShare: 0.20,
			models.ActivityMeeting:       0.15,
			models.ActivityMention:       0.15,
			models.ActivityCollaboration: 0.10,
		},

		Temporal: Temporal{
			Location: "America/Santiago",
			Baseline: 1.0,
			Hourly: []float64{
				0.05, 0.03, 0.02, 0.02, 0.03, 0.08, // 00-05
				0.20, 0.50, 0.90, 1.00, 1.00, 0.95, // 06-11
				0.70, 0.60, 0.85, 0.95, 0.90, 0.75, // 12-17
				0.60, 0.55, 0.50, 0.40, 0.25, 0.10, // 18-23
			},
			Weekly: []float64{0.30, 1.00, 1.00, 0.95, 0.90, 0.75, 0.35},
			Seasons: []Season{
				{Name: "summer_break", Months: []int{1, 2}, Factor: 0.30},
				{Name: "first_semester", Months: []int{3, 4, 5, 6}, Factor: 1.00},
				{Name: "winter_break", Months: []int{7}, Factor: 0.50},
				{Name: "second_semester", Months: []int{8, 9, 10, 11}, Factor: 1.00},
				{Name: "year_end", Months: []int{12}, Factor: 0.60},
			},
		},

		RoleEngagement: map[models.RoleType][]random.Weighted[models.EngagementLevel]{
			models.RoleAdmin: {
				random.W(models.EngagementVeryHigh, 0.5),
				random.W(models.EngagementHigh, 0.5),
			},
			models.RoleConsultant: {
				random.W(models.EngagementHigh, 0.5),
				random.W(models.EngagementVeryHigh, 0.5),
			},
			models.RoleSupervisor: {
				random.W(models.EngagementHigh, 0.5),
				random.W(models.EngagementMedium, 0.5),
			},
			models.RoleTeacher: {
				random.W(models.EngagementHigh, 0.4),
				random.W(models.EngagementMedium, 0.4),
				random.W(models.EngagementLow, 0.2),
			},
			models.RoleLeader: {
				random.W(models.EngagementHigh, 0.6),
				random.W(models.EngagementMedium, 0.4),
			},
			models.RoleStudent: {
				random.W(models.EngagementVeryHigh, 0.10),
				random.W(models.EngagementHigh, 0.20),
				random.W(models.EngagementMedium, 0.35),
				random.W(models.EngagementLow, 0.25),
				random.W(models.EngagementVeryLow, 0.10),
			},
		},

		Progress: Progress{
			BaseCompletion: 0.7,
			MinProbability: 0.10,
			MaxProbability: 0.95,
			EngagementMultiplier: map[models.EngagementLevel]float64{
				models.EngagementVeryHigh: 1.3,
				models.EngagementHigh:     1.15,
				models.EngagementMedium:   1.0,
				models.EngagementLow:      0.7,
				models.EngagementVeryLow:  0.4,
			},
			MotivationMultiplier: map[models.MotivationLevel]float64{
				models.MotivationHigh:   1.2,
				models.MotivationMedium: 1.0,
				models.MotivationLow:    0.8,
			},
			SubmissionShare: Range{70, 90},
		},

		ActivityWindow: 183 * 24 * time.Hour,
		SkipEscape:     0.3,
	}
}
