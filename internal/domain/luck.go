package domain

// LuckTier is a named bracket of the luck score
type LuckTier string

const (
	TierGreatMisfortune LuckTier = "GREAT_MISFORTUNE"
	TierMisfortune      LuckTier = "MISFORTUNE"
	TierMinorMisfortune LuckTier = "MINOR_MISFORTUNE"
	TierNeutral         LuckTier = "NEUTRAL"
	TierMinorFortune    LuckTier = "MINOR_FORTUNE"
	TierFortune         LuckTier = "FORTUNE"
	TierGreatFortune    LuckTier = "GREAT_FORTUNE"
)

// EventEffect names the character field a special event changes
type EventEffect string

const (
	EffectExperience  EventEffect = "experience"
	EffectSpiritStone EventEffect = "spirit_stone"
	EffectGold        EventEffect = "gold"
	EffectLuck        EventEffect = "luck"
	EffectAttribute   EventEffect = "attribute"
)

// SpecialEvent is a drawn luck event with its rolled amount.
// Amount is signed: negative events carry a negative amount.
type SpecialEvent struct {
	Name     string      `json:"name"`
	Positive bool        `json:"positive"`
	Effect   EventEffect `json:"effect"`
	Amount   int64       `json:"amount"`
	Applied  int64       `json:"applied"` // change after clamping to field bounds
}
