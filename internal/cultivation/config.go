package cultivation

import (
	"fmt"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// RealmDefinition names a realm and the experience consumed to break into it
type RealmDefinition struct {
	Name        string `json:"name" validate:"required"`
	Requirement int64  `json:"requirement" validate:"gte=0"`
}

// Config holds cultivation tunables
type Config struct {
	BaseExpGain       int64   `json:"base_exp_gain" validate:"gt=0"`
	BaseAttributeGain int64   `json:"base_attribute_gain" validate:"gt=0"`
	Variance          float64 `json:"variance" validate:"gte=0,lt=1"`

	BreakthroughBaseRate   float64 `json:"breakthrough_base_rate" validate:"gte=0,lte=1"`
	RealmDepthPenalty      float64 `json:"realm_depth_penalty" validate:"gte=0"`
	LuckBonusPerPoint      float64 `json:"luck_bonus_per_point" validate:"gte=0"`
	TalentBonusScale       float64 `json:"talent_bonus_scale" validate:"gte=0"`
	FailurePenaltyFraction float64 `json:"failure_penalty_fraction" validate:"gt=0,lte=1"`
	CavePenaltyReduction   float64 `json:"cave_penalty_reduction" validate:"gte=0"`
	MinPenaltyFraction     float64 `json:"min_penalty_fraction" validate:"gt=0,lte=1"`

	Realms []RealmDefinition `json:"realms" validate:"min=2,dive"`
}

var realmStages = []string{"Early", "Middle", "Late", "Peak"}

var realmRequirements = []int64{
	0,
	100, 250, 450, 700,
	1000, 1400, 1900, 2500,
	3200, 4000, 4900, 5900,
	7000, 8200, 9500, 10900,
	12400, 14000, 15700, 17500,
	19400, 21400, 23500, 25700,
	28000, 30400, 32900, 35500,
	38200, 41000, 43900, 46900,
	50000,
}

var realmMajorNames = []string{
	"Qi Refining",
	"Foundation Establishment",
	"Golden Core",
	"Nascent Soul",
	"Deity Transformation",
	"Void Refining",
	"Body Integration",
	"Mahayana",
	"Tribulation",
}

// DefaultRealms builds the shipped realm ladder
func DefaultRealms() []RealmDefinition {
	realms := make([]RealmDefinition, 0, len(realmRequirements))
	realms = append(realms, RealmDefinition{Name: "Mortal", Requirement: 0})
	for i := 1; i < len(realmRequirements); i++ {
		major := realmMajorNames[(i-1)/len(realmStages)]
		stage := realmStages[(i-1)%len(realmStages)]
		realms = append(realms, RealmDefinition{
			Name:        fmt.Sprintf("%s %s", major, stage),
			Requirement: realmRequirements[i],
		})
	}
	return realms
}

// DefaultConfig returns the shipped cultivation tunables
func DefaultConfig() Config {
	return Config{
		BaseExpGain:            10,
		BaseAttributeGain:      3,
		Variance:               0.2,
		BreakthroughBaseRate:   0.5,
		RealmDepthPenalty:      0.01,
		LuckBonusPerPoint:      0.005,
		TalentBonusScale:       0.1,
		FailurePenaltyFraction: 0.2,
		CavePenaltyReduction:   0.02,
		MinPenaltyFraction:     0.1,
		Realms:                 DefaultRealms(),
	}
}

// CheckRealms verifies requirements never decrease along the ladder
func (c Config) CheckRealms() error {
	for i := 1; i < len(c.Realms); i++ {
		if c.Realms[i].Requirement < c.Realms[i-1].Requirement {
			return fmt.Errorf("%w: realm %d requirement %d below realm %d", domain.ErrConfigInvalid, i, c.Realms[i].Requirement, i-1)
		}
	}
	return nil
}
