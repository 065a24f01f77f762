package production

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// StageInfo is the derived state of a slot at an instant
type StageInfo struct {
	Stage     domain.SlotStage `json:"stage"`
	Ready     bool             `json:"ready"`
	Spoiled   bool             `json:"spoiled"`
	Progress  float64          `json:"progress"`
	Remaining time.Duration    `json:"-"`
	SpoiledAt *time.Time       `json:"spoiled_at,omitempty"`
}

// Engine provides pure production logic (no DB dependencies)
type Engine struct {
	cfg     Config
	catalog *Catalog
}

// NewEngine creates a production engine
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		catalog: NewCatalog(cfg.Farm.Seeds, cfg.Alchemy.Recipes),
	}
}

// Catalog exposes the seed and recipe lookup
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// SlotCount returns how many slots a kind has per character
func (e *Engine) SlotCount(kind domain.ProductionKind) int {
	if kind == domain.KindFarm {
		return e.cfg.Farm.TotalPlots
	}
	return e.cfg.Alchemy.Cauldrons
}

// NewSlots builds the empty slot set for a new character
func (e *Engine) NewSlots(characterID string) []domain.ProductionSlot {
	slots := make([]domain.ProductionSlot, 0, e.cfg.Farm.TotalPlots+e.cfg.Alchemy.Cauldrons)
	for i := 0; i < e.cfg.Farm.TotalPlots; i++ {
		slots = append(slots, domain.ProductionSlot{
			CharacterID: characterID,
			Kind:        domain.KindFarm,
			Index:       i,
			Stage:       domain.StageEmpty,
			Unlocked:    i < e.cfg.Farm.InitialUnlocked,
			PlotType:    domain.PlotNormal,
		})
	}
	for i := 0; i < e.cfg.Alchemy.Cauldrons; i++ {
		slots = append(slots, domain.ProductionSlot{
			CharacterID: characterID,
			Kind:        domain.KindAlchemy,
			Index:       i,
			Stage:       domain.StageEmpty,
			Unlocked:    true,
		})
	}
	return slots
}

// StageOf derives a slot's stage from (now, start, completion, spoil seed) only.
func (e *Engine) StageOf(slot *domain.ProductionSlot, now time.Time) StageInfo {
	if !slot.Occupied() {
		return StageInfo{Stage: domain.StageEmpty}
	}
	start, end := *slot.StartedAt, *slot.CompletesAt

	if now.Before(end) {
		total := end.Sub(start)
		elapsed := now.Sub(start)
		progress := 0.0
		if total > 0 && elapsed > 0 {
			progress = float64(elapsed) / float64(total)
		}
		return StageInfo{
			Stage:     growthStage(progress),
			Progress:  progress,
			Remaining: end.Sub(now),
		}
	}

	if at := e.spoiledAt(slot, now); at != nil {
		return StageInfo{Stage: domain.StageSpoiled, Spoiled: true, Progress: 1, SpoiledAt: at}
	}
	return StageInfo{Stage: domain.StageReady, Ready: true, Progress: 1}
}

func growthStage(progress float64) domain.SlotStage {
	switch {
	case progress < 0.25:
		return domain.StageSprout
	case progress < 0.5:
		return domain.StageSeedling
	case progress < 0.75:
		return domain.StageGrowing
	default:
		return domain.StageRipening
	}
}

// spoiledAt runs one spoil check per whole grace period elapsed past
// completion and returns the end of the first period that spoiled.
func (e *Engine) spoiledAt(slot *domain.ProductionSlot, now time.Time) *time.Time {
	if slot.Kind != domain.KindFarm || e.cfg.Farm.SpoilChance <= 0 {
		return nil
	}
	grace := time.Duration(e.cfg.Farm.SpoilGraceMinutes) * time.Minute
	periods := int64(now.Sub(*slot.CompletesAt) / grace)
	for k := int64(1); k <= periods; k++ {
		if spoilRoll(slot.SpoilSeed, k) < e.cfg.Farm.SpoilChance {
			at := slot.CompletesAt.Add(time.Duration(k) * grace)
			return &at
		}
	}
	return nil
}

// spoilRoll maps (seed, period) to a stable value in [0,1)
func spoilRoll(seed, period int64) float64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(period))
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return float64(h.Sum64()>>11) / float64(1<<53)
}

// FarmDuration is the seed growth time shortened by plot type and spirit array
func (e *Engine) FarmDuration(seed Seed, plot domain.PlotType, arrayLevel int) time.Duration {
	speed := e.plotModifier(plot).Speed * e.arraySpeed(arrayLevel)
	hours := seed.GrowthHours / speed
	return time.Duration(hours * float64(time.Hour)).Round(time.Second)
}

func (e *Engine) plotModifier(plot domain.PlotType) PlotTypeModifier {
	if m, ok := e.cfg.Farm.PlotTypes[plot]; ok {
		return m
	}
	return PlotTypeModifier{Speed: 1, Yield: 1}
}

func (e *Engine) arraySpeed(level int) float64 {
	table := e.cfg.Farm.SpiritArraySpeed
	if len(table) == 0 {
		return 1
	}
	if level < 0 {
		level = 0
	}
	if level >= len(table) {
		level = len(table) - 1
	}
	return table[level]
}

// FarmYield rolls the harvest amount for a seed on a plot type
func (e *Engine) FarmYield(seed Seed, plot domain.PlotType, rng utils.RNG) int64 {
	base := utils.RandomInt(rng, seed.YieldMin, seed.YieldMax)
	qty := int64(float64(base) * e.plotModifier(plot).Yield)
	if qty < 1 {
		qty = 1
	}
	return qty
}

// AlchemyDuration shortens a recipe by cave and alchemy level, never below the minimum
func (e *Engine) AlchemyDuration(r Recipe, caveLevel, alchemyLevel int) time.Duration {
	cfg := e.cfg.Alchemy
	minutes := float64(r.BaseMinutes)

	if caveLevel >= cfg.CaveBonusFromLevel && cfg.CaveBonusFromLevel > 0 {
		cut := math.Min(float64(caveLevel-cfg.CaveBonusFromLevel+1)*cfg.CaveSpeedPerLevel, cfg.CaveSpeedMax)
		minutes *= 1 - cut
	}
	if alchemyLevel > 1 {
		cut := math.Min(float64(alchemyLevel-1)*cfg.LevelSpeedPerLevel, cfg.LevelSpeedMax)
		minutes *= 1 - cut
	}
	if minutes < float64(cfg.MinMinutes) {
		minutes = float64(cfg.MinMinutes)
	}
	return time.Duration(minutes * float64(time.Minute)).Round(time.Second)
}

// AlchemySuccessRate is fixed when a brew starts
func (e *Engine) AlchemySuccessRate(c *domain.Character) float64 {
	cfg := e.cfg.Alchemy
	rate := cfg.BaseSuccessRate +
		float64(c.Realm)*cfg.RealmSuccessBonus +
		float64(c.Luck-domain.DefaultLuck)*cfg.LuckSuccessBonus
	if c.CaveLevel >= cfg.CaveBonusFromLevel && cfg.CaveBonusFromLevel > 0 {
		rate += float64(c.CaveLevel-cfg.CaveBonusFromLevel+1) * cfg.CaveSuccessBonus
	}
	if c.AlchemyLevel > 1 {
		rate += float64(c.AlchemyLevel-1) * cfg.LevelSuccessBonus
	}
	return utils.Clamp(rate, cfg.MinSuccessRate, cfg.MaxSuccessRate)
}

// AlchemyExp is the experience for a finished brew; failures earn half
func (e *Engine) AlchemyExp(quality domain.Quality, success bool) int64 {
	exp := e.cfg.Alchemy.BaseExp + e.cfg.Alchemy.QualityExpBonus[quality]
	if !success {
		exp /= 2
	}
	return exp
}

// ApplyAlchemyExp credits exp and raises the level while exp >= level * ExpPerLevel
func (e *Engine) ApplyAlchemyExp(c *domain.Character, exp int64) bool {
	if c.AlchemyLevel < 1 {
		c.AlchemyLevel = 1
	}
	c.AlchemyExp += exp
	leveled := false
	for c.AlchemyExp >= int64(c.AlchemyLevel)*e.cfg.Alchemy.ExpPerLevel {
		c.AlchemyLevel++
		leveled = true
	}
	return leveled
}

// UnlockRequirement returns the gate for a farm plot; ok is false for
// plots that have no requirement entry
func (e *Engine) UnlockRequirement(index int) (UnlockRequirement, bool) {
	req, ok := e.cfg.Farm.UnlockRequirements[index]
	return req, ok
}
