package domain

import "time"

// ProductionKind identifies a timed production facility
type ProductionKind string

const (
	KindFarm    ProductionKind = "farm"
	KindAlchemy ProductionKind = "alchemy"
)

// Valid reports whether k is a known production kind
func (k ProductionKind) Valid() bool {
	return k == KindFarm || k == KindAlchemy
}

// SlotStage is the derived lifecycle stage of a production slot
type SlotStage string

const (
	StageEmpty    SlotStage = "empty"
	StageSprout   SlotStage = "sprout"
	StageSeedling SlotStage = "seedling"
	StageGrowing  SlotStage = "growing"
	StageRipening SlotStage = "ripening"
	StageReady    SlotStage = "ready"
	StageSpoiled  SlotStage = "spoiled"
)

// PlotType modifies farm plot growth speed and yield
type PlotType string

const (
	PlotNormal    PlotType = "normal"
	PlotFertile   PlotType = "fertile"
	PlotSpiritual PlotType = "spiritual"
)

// ProductionSlot is one farm plot or alchemy cauldron.
// Stage, Ready and Spoiled are a cache of the derived stage; the source of
// truth is (StartedAt, CompletesAt, SpoilSeed).
type ProductionSlot struct {
	CharacterID string         `json:"character_id"`
	Kind        ProductionKind `json:"kind"`
	Index       int            `json:"index"`
	RecipeID    *string        `json:"recipe_id,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletesAt *time.Time     `json:"completes_at,omitempty"`
	Stage       SlotStage      `json:"stage"`
	Ready       bool           `json:"ready"`
	Spoiled     bool           `json:"spoiled"`
	Unlocked    bool           `json:"unlocked"`
	PlotType    PlotType       `json:"plot_type,omitempty"`
	SuccessRate float64        `json:"success_rate,omitempty"`
	SpoilSeed   int64          `json:"-"`
}

// Occupied reports whether something is planted or brewing in the slot
func (s *ProductionSlot) Occupied() bool {
	return s.RecipeID != nil && s.StartedAt != nil && s.CompletesAt != nil
}

// Clear resets the slot back to empty
func (s *ProductionSlot) Clear() {
	s.RecipeID = nil
	s.StartedAt = nil
	s.CompletesAt = nil
	s.Stage = StageEmpty
	s.Ready = false
	s.Spoiled = false
	s.SuccessRate = 0
	s.SpoilSeed = 0
}

// SlotStageUpdate is a cached stage refresh written by the background sweep.
// StartedAt pins the update to the crop that was read, so a slot replanted
// in between keeps its own stage.
type SlotStageUpdate struct {
	CharacterID string
	Kind        ProductionKind
	Index       int
	StartedAt   time.Time
	Stage       SlotStage
	Ready       bool
	Spoiled     bool
}
