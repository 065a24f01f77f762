package utils

import (
	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// qualityOrder lists qualities from lowest to highest
var qualityOrder = []domain.Quality{
	domain.QualityCommon,
	domain.QualityUncommon,
	domain.QualityRare,
	domain.QualityEpic,
	domain.QualityLegendary,
}

// qualityUpgradeChance is the chance of improving one grade from the key quality
var qualityUpgradeChance = map[domain.Quality]float64{
	domain.QualityCommon:   0.15,
	domain.QualityUncommon: 0.10,
	domain.QualityRare:     0.05,
	domain.QualityEpic:     0.02,
}

// NextQuality returns the grade above q, or q when already at the top
func NextQuality(q domain.Quality) domain.Quality {
	for i, candidate := range qualityOrder {
		if candidate == q && i+1 < len(qualityOrder) {
			return qualityOrder[i+1]
		}
	}
	return q
}

// RollQualityUpgrade may raise q by one grade
func RollQualityUpgrade(rng RNG, q domain.Quality) domain.Quality {
	chance, ok := qualityUpgradeChance[q]
	if !ok {
		return q
	}
	if rng.Float64() < chance {
		return NextQuality(q)
	}
	return q
}
