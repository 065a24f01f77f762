package luck

import (
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// Engine provides pure luck logic (no DB dependencies)
type Engine struct {
	cfg Config
}

// NewEngine creates a luck engine over validated tables
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the tables the engine was built with
func (e *Engine) Config() Config {
	return e.cfg
}

// TierOf maps a score to its tier. Scores outside [0,100] are clamped first.
func (e *Engine) TierOf(score int) domain.LuckTier {
	score = domain.ClampLuck(score)
	for _, r := range e.cfg.Tiers {
		if score >= r.Min && score <= r.Max {
			return r.Tier
		}
	}
	// unreachable with a config that passed CheckTiers
	return domain.TierNeutral
}

// MultiplierFor interpolates the accrual multiplier linearly between the
// configured endpoints and rounds it to the configured precision.
func (e *Engine) MultiplierFor(score int) float64 {
	ratio := float64(domain.ClampLuck(score)) / float64(domain.MaxLuck)
	m := e.cfg.MultiplierMin + ratio*(e.cfg.MultiplierMax-e.cfg.MultiplierMin)
	return utils.Round(m, e.cfg.MultiplierPrecision)
}

// EffectLabel describes a multiplier for display
func (e *Engine) EffectLabel(multiplier float64) string {
	switch {
	case multiplier >= EffectExcellentThreshold:
		return EffectExcellent
	case multiplier >= EffectGoodThreshold:
		return EffectGood
	case multiplier >= EffectAverageThreshold:
		return EffectAverage
	default:
		return EffectPoor
	}
}

// EventChances returns the positive and negative event probabilities for a score
func (e *Engine) EventChances(score int) (positive, negative float64) {
	m, ok := e.cfg.TierMultipliers[e.TierOf(score)]
	if !ok {
		m = EventMultiplier{Positive: 1, Negative: 1}
	}
	return e.cfg.BaseEventChance * m.Positive, e.cfg.BaseEventChance * m.Negative
}

// DrawEvent rolls once against the tier-scaled chances. A roll below the
// positive chance picks from the positive table, a roll below the combined
// chance picks from the negative table. Returns nil when nothing fires.
func (e *Engine) DrawEvent(score int, rng utils.RNG) *domain.SpecialEvent {
	pos, neg := e.EventChances(score)
	roll := rng.Float64()

	switch {
	case roll < pos:
		return e.pick(e.cfg.PositiveEvents, true, rng)
	case roll < pos+neg:
		return e.pick(e.cfg.NegativeEvents, false, rng)
	default:
		return nil
	}
}

func (e *Engine) pick(table []EventDefinition, positive bool, rng utils.RNG) *domain.SpecialEvent {
	weights := make([]int, len(table))
	for i, def := range table {
		weights[i] = def.Weight
	}
	idx := utils.WeightedIndex(rng, weights)
	if idx < 0 {
		return nil
	}
	def := table[idx]
	return &domain.SpecialEvent{
		Name:     def.Name,
		Positive: positive,
		Effect:   def.Effect,
		Amount:   utils.RandomInt(rng, def.AmountMin, def.AmountMax),
	}
}

// RollScore draws a fresh uniform score in [0,100]
func (e *Engine) RollScore(rng utils.RNG) int {
	return rng.IntN(domain.MaxLuck-domain.MinLuck+1) + domain.MinLuck
}
