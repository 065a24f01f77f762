package production

import "github.com/osse101/IdleCultivation_Go/internal/domain"

// FarmConfig holds farm tunables
type FarmConfig struct {
	TotalPlots         int                                  `json:"total_plots" validate:"gt=0"`
	InitialUnlocked    int                                  `json:"initial_unlocked" validate:"gte=0,ltefield=TotalPlots"`
	SpoilGraceMinutes  int                                  `json:"spoil_grace_minutes" validate:"gt=0"`
	SpoilChance        float64                              `json:"spoil_chance" validate:"gte=0,lte=1"`
	PlotTypes          map[domain.PlotType]PlotTypeModifier `json:"plot_types" validate:"required,dive"`
	SpiritArraySpeed   []float64                            `json:"spirit_array_speed" validate:"min=1,dive,gt=0"`
	UnlockRequirements map[int]UnlockRequirement            `json:"unlock_requirements" validate:"dive"`
	Seeds              []Seed                               `json:"seeds" validate:"min=1,dive"`
}

// AlchemyConfig holds alchemy tunables
type AlchemyConfig struct {
	Cauldrons          int                      `json:"cauldrons" validate:"gt=0"`
	MinMinutes         int                      `json:"min_minutes" validate:"gt=0"`
	CaveSpeedPerLevel  float64                  `json:"cave_speed_per_level" validate:"gte=0"`
	CaveSpeedMax       float64                  `json:"cave_speed_max" validate:"gte=0,lt=1"`
	CaveBonusFromLevel int                      `json:"cave_bonus_from_level" validate:"gte=0"`
	LevelSpeedPerLevel float64                  `json:"level_speed_per_level" validate:"gte=0"`
	LevelSpeedMax      float64                  `json:"level_speed_max" validate:"gte=0,lt=1"`
	BaseSuccessRate    float64                  `json:"base_success_rate" validate:"gte=0,lte=1"`
	RealmSuccessBonus  float64                  `json:"realm_success_bonus" validate:"gte=0"`
	LuckSuccessBonus   float64                  `json:"luck_success_bonus" validate:"gte=0"`
	CaveSuccessBonus   float64                  `json:"cave_success_bonus" validate:"gte=0"`
	LevelSuccessBonus  float64                  `json:"level_success_bonus" validate:"gte=0"`
	MinSuccessRate     float64                  `json:"min_success_rate" validate:"gte=0,lte=1"`
	MaxSuccessRate     float64                  `json:"max_success_rate" validate:"gtefield=MinSuccessRate,lte=1"`
	BaseExp            int64                    `json:"base_exp" validate:"gte=0"`
	QualityExpBonus    map[domain.Quality]int64 `json:"quality_exp_bonus"`
	ExpPerLevel        int64                    `json:"exp_per_level" validate:"gt=0"`
	Recipes            []Recipe                 `json:"recipes" validate:"min=1,dive"`
}

// Config groups farm and alchemy tunables
type Config struct {
	Farm    FarmConfig    `json:"farm"`
	Alchemy AlchemyConfig `json:"alchemy"`
}

// DefaultConfig returns the shipped production tunables
func DefaultConfig() Config {
	return Config{
		Farm: FarmConfig{
			TotalPlots:        12,
			InitialUnlocked:   4,
			SpoilGraceMinutes: 60,
			SpoilChance:       0.05,
			PlotTypes: map[domain.PlotType]PlotTypeModifier{
				domain.PlotNormal:    {Speed: 1.0, Yield: 1.0},
				domain.PlotFertile:   {Speed: 1.3, Yield: 1.2},
				domain.PlotSpiritual: {Speed: 1.5, Yield: 1.5},
			},
			SpiritArraySpeed: []float64{1.0, 1.2, 1.5, 1.8, 2.2, 2.5},
			UnlockRequirements: map[int]UnlockRequirement{
				4:  {CaveLevel: 4, Gold: 500},
				5:  {CaveLevel: 4, Gold: 500},
				6:  {CaveLevel: 5, Gold: 1000},
				7:  {CaveLevel: 5, Gold: 1000},
				8:  {CaveLevel: 6, Gold: 2000},
				9:  {CaveLevel: 6, Gold: 2000},
				10: {CaveLevel: 7, Gold: 5000},
				11: {CaveLevel: 7, Gold: 5000},
			},
			Seeds: defaultSeeds(),
		},
		Alchemy: AlchemyConfig{
			Cauldrons:          3,
			MinMinutes:         5,
			CaveSpeedPerLevel:  0.05,
			CaveSpeedMax:       0.5,
			CaveBonusFromLevel: 3,
			LevelSpeedPerLevel: 0.02,
			LevelSpeedMax:      0.3,
			BaseSuccessRate:    0.7,
			RealmSuccessBonus:  0.02,
			LuckSuccessBonus:   0.001,
			CaveSuccessBonus:   0.05,
			LevelSuccessBonus:  0.01,
			MinSuccessRate:     0.1,
			MaxSuccessRate:     0.95,
			BaseExp:            10,
			QualityExpBonus: map[domain.Quality]int64{
				domain.QualityRare: 5,
				domain.QualityEpic: 10,
			},
			ExpPerLevel: 100,
			Recipes:     defaultRecipes(),
		},
	}
}
