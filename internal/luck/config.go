package luck

import (
	"fmt"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// TierRange maps an inclusive score range to a tier
type TierRange struct {
	Tier domain.LuckTier `json:"tier" validate:"required"`
	Min  int             `json:"min" validate:"min=0,max=100"`
	Max  int             `json:"max" validate:"min=0,max=100,gtefield=Min"`
}

// EventMultiplier scales the base event chance per tier
type EventMultiplier struct {
	Positive float64 `json:"positive" validate:"gte=0"`
	Negative float64 `json:"negative" validate:"gte=0"`
}

// EventDefinition is one entry of a weighted special event table.
// Negative events use negative amounts.
type EventDefinition struct {
	Name      string             `json:"name" validate:"required"`
	Weight    int                `json:"weight" validate:"gt=0"`
	Effect    domain.EventEffect `json:"effect" validate:"required,oneof=experience spirit_stone gold luck attribute"`
	AmountMin int64              `json:"amount_min"`
	AmountMax int64              `json:"amount_max" validate:"gtefield=AmountMin"`
}

// Config holds the luck tunables
type Config struct {
	MultiplierMin       float64                             `json:"multiplier_min" validate:"gte=0"`
	MultiplierMax       float64                             `json:"multiplier_max" validate:"gtefield=MultiplierMin"`
	MultiplierPrecision int                                 `json:"multiplier_precision" validate:"min=0,max=6"`
	BaseEventChance     float64                             `json:"base_event_chance" validate:"gte=0,lte=1"`
	Tiers               []TierRange                         `json:"tiers" validate:"len=7,dive"`
	TierMultipliers     map[domain.LuckTier]EventMultiplier `json:"tier_multipliers" validate:"required,dive"`
	PositiveEvents      []EventDefinition                   `json:"positive_events" validate:"min=1,dive"`
	NegativeEvents      []EventDefinition                   `json:"negative_events" validate:"min=1,dive"`
	LuckPillItemID      string                              `json:"luck_pill_item_id" validate:"required"`
	LuckPillBonus       int                                 `json:"luck_pill_bonus" validate:"gte=0,lte=100"`
}

// DefaultConfig returns the shipped luck tables
func DefaultConfig() Config {
	return Config{
		MultiplierMin:       0.5,
		MultiplierMax:       2.0,
		MultiplierPrecision: 2,
		BaseEventChance:     0.05,
		Tiers: []TierRange{
			{Tier: domain.TierGreatMisfortune, Min: 0, Max: 10},
			{Tier: domain.TierMisfortune, Min: 11, Max: 25},
			{Tier: domain.TierMinorMisfortune, Min: 26, Max: 40},
			{Tier: domain.TierNeutral, Min: 41, Max: 60},
			{Tier: domain.TierMinorFortune, Min: 61, Max: 75},
			{Tier: domain.TierFortune, Min: 76, Max: 90},
			{Tier: domain.TierGreatFortune, Min: 91, Max: 100},
		},
		TierMultipliers: map[domain.LuckTier]EventMultiplier{
			domain.TierGreatMisfortune: {Positive: 0.1, Negative: 4.0},
			domain.TierMisfortune:      {Positive: 0.3, Negative: 2.5},
			domain.TierMinorMisfortune: {Positive: 0.6, Negative: 1.5},
			domain.TierNeutral:         {Positive: 1.0, Negative: 1.0},
			domain.TierMinorFortune:    {Positive: 1.5, Negative: 0.6},
			domain.TierFortune:         {Positive: 2.5, Negative: 0.3},
			domain.TierGreatFortune:    {Positive: 4.0, Negative: 0.1},
		},
		PositiveEvents: []EventDefinition{
			{Name: "epiphany", Weight: 20, Effect: domain.EffectExperience, AmountMin: 100, AmountMax: 200},
			{Name: "qi_resonance", Weight: 30, Effect: domain.EffectSpiritStone, AmountMin: 10, AmountMax: 50},
			{Name: "heavenly_treasure", Weight: 50, Effect: domain.EffectAttribute, AmountMin: 20, AmountMax: 20},
		},
		NegativeEvents: []EventDefinition{
			{Name: "qi_deviation", Weight: 29, Effect: domain.EffectExperience, AmountMin: -100, AmountMax: -50},
			{Name: "qi_turbulence", Weight: 29, Effect: domain.EffectSpiritStone, AmountMin: -20, AmountMax: -5},
			{Name: "scattered_wealth", Weight: 24, Effect: domain.EffectGold, AmountMin: -500, AmountMax: -100},
			{Name: "broken_taboo", Weight: 18, Effect: domain.EffectLuck, AmountMin: -1, AmountMax: -1},
		},
		LuckPillItemID: "luck_pill",
		LuckPillBonus:  20,
	}
}

// CheckTiers verifies the tier ranges partition [0,100] in ascending order
// with no gap or overlap.
func (c Config) CheckTiers() error {
	next := domain.MinLuck
	for _, r := range c.Tiers {
		if r.Min != next {
			return fmt.Errorf("%w: tier %s starts at %d, expected %d", domain.ErrConfigInvalid, r.Tier, r.Min, next)
		}
		if r.Max < r.Min {
			return fmt.Errorf("%w: tier %s has max %d below min %d", domain.ErrConfigInvalid, r.Tier, r.Max, r.Min)
		}
		if _, ok := c.TierMultipliers[r.Tier]; !ok {
			return fmt.Errorf("%w: tier %s has no event multiplier", domain.ErrConfigInvalid, r.Tier)
		}
		next = r.Max + 1
	}
	if next != domain.MaxLuck+1 {
		return fmt.Errorf("%w: tiers end at %d, expected %d", domain.ErrConfigInvalid, next-1, domain.MaxLuck)
	}
	return nil
}
