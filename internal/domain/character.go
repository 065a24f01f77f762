package domain

import "time"

// CultivationFocus is the training attribute a character grows each tick
type CultivationFocus string

const (
	FocusHP              CultivationFocus = "HP"
	FocusPhysicalAttack  CultivationFocus = "PHYSICAL_ATTACK"
	FocusMagicAttack     CultivationFocus = "MAGIC_ATTACK"
	FocusPhysicalDefense CultivationFocus = "PHYSICAL_DEFENSE"
	FocusMagicDefense    CultivationFocus = "MAGIC_DEFENSE"
)

// AllFocuses lists every focus in display order
var AllFocuses = []CultivationFocus{
	FocusHP,
	FocusPhysicalAttack,
	FocusMagicAttack,
	FocusPhysicalDefense,
	FocusMagicDefense,
}

// Valid reports whether f is a known focus
func (f CultivationFocus) Valid() bool {
	for _, known := range AllFocuses {
		if f == known {
			return true
		}
	}
	return false
}

// TrainingTotals holds the accumulated training of each attribute
type TrainingTotals struct {
	HP              int64 `json:"hp"`
	PhysicalAttack  int64 `json:"physical_attack"`
	MagicAttack     int64 `json:"magic_attack"`
	PhysicalDefense int64 `json:"physical_defense"`
	MagicDefense    int64 `json:"magic_defense"`
}

func (t *TrainingTotals) field(f CultivationFocus) *int64 {
	switch f {
	case FocusHP:
		return &t.HP
	case FocusPhysicalAttack:
		return &t.PhysicalAttack
	case FocusMagicAttack:
		return &t.MagicAttack
	case FocusPhysicalDefense:
		return &t.PhysicalDefense
	case FocusMagicDefense:
		return &t.MagicDefense
	}
	return nil
}

// Add credits amount to the given attribute. Totals never go below zero.
func (t *TrainingTotals) Add(f CultivationFocus, amount int64) int64 {
	p := t.field(f)
	if p == nil {
		return 0
	}
	before := *p
	*p += amount
	if *p < 0 {
		*p = 0
	}
	return *p - before
}

// Get returns the total for the given attribute
func (t TrainingTotals) Get(f CultivationFocus) int64 {
	if p := t.field(f); p != nil {
		return *p
	}
	return 0
}

// SpiritualRoot is the character's talent tier
type SpiritualRoot string

const (
	RootWaste     SpiritualRoot = "WASTE"
	RootSingle    SpiritualRoot = "SINGLE"
	RootDual      SpiritualRoot = "DUAL"
	RootTriple    SpiritualRoot = "TRIPLE"
	RootQuadruple SpiritualRoot = "QUADRUPLE"
	RootFive      SpiritualRoot = "FIVE"
	RootHeavenly  SpiritualRoot = "HEAVENLY"
	RootMutant    SpiritualRoot = "MUTANT"
)

// SpiritualRootInfo describes a talent tier
type SpiritualRootInfo struct {
	Root       SpiritualRoot
	Multiplier float64
	Weight     int // draw weight at character creation
}

// SpiritualRoots is the talent table in draw order
var SpiritualRoots = []SpiritualRootInfo{
	{Root: RootWaste, Multiplier: 0.5, Weight: 20},
	{Root: RootSingle, Multiplier: 1.5, Weight: 8},
	{Root: RootDual, Multiplier: 1.2, Weight: 20},
	{Root: RootTriple, Multiplier: 1.0, Weight: 20},
	{Root: RootQuadruple, Multiplier: 0.8, Weight: 20},
	{Root: RootFive, Multiplier: 0.6, Weight: 20},
	{Root: RootHeavenly, Multiplier: 3.0, Weight: 1},
	{Root: RootMutant, Multiplier: 2.0, Weight: 2},
}

// Valid reports whether r is a known talent tier
func (r SpiritualRoot) Valid() bool {
	for _, info := range SpiritualRoots {
		if info.Root == r {
			return true
		}
	}
	return false
}

// RootMultiplier returns the talent multiplier of a root, 1.0 when unknown
func RootMultiplier(root SpiritualRoot) float64 {
	for _, info := range SpiritualRoots {
		if info.Root == root {
			return info.Multiplier
		}
	}
	return 1.0
}

// Character is the persistent progression state owned by one user
type Character struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Name          string           `json:"name"`
	Experience    int64            `json:"experience"`
	Realm         int              `json:"realm"`
	SpiritualRoot SpiritualRoot    `json:"spiritual_root"`
	Luck          int              `json:"luck"`
	Gold          int64            `json:"gold"`
	SpiritStone   int64            `json:"spirit_stone"`
	Focus         CultivationFocus `json:"focus"`
	Training      TrainingTotals   `json:"training"`

	CaveLevel        int   `json:"cave_level"`
	SpiritArrayLevel int   `json:"spirit_array_level"`
	AlchemyLevel     int   `json:"alchemy_level"`
	AlchemyExp       int64 `json:"alchemy_exp"`

	LastActive   time.Time  `json:"last_active"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Character defaults for newly created characters
const (
	DefaultLuck         = 50
	DefaultStartingGold = 1000
	MaxLuck             = 100
	MinLuck             = 0
)

// ClampLuck bounds a luck score to [MinLuck, MaxLuck]
func ClampLuck(score int) int {
	if score < MinLuck {
		return MinLuck
	}
	if score > MaxLuck {
		return MaxLuck
	}
	return score
}
