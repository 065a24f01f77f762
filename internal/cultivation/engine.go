package cultivation

import (
	"github.com/osse101/IdleCultivation_Go/internal/domain"
	"github.com/osse101/IdleCultivation_Go/internal/luck"
	"github.com/osse101/IdleCultivation_Go/internal/utils"
)

// TickResult describes one credited cultivation tick
type TickResult struct {
	ExpGained       int64                   `json:"exp_gained"`
	AttributeGained int64                   `json:"attribute_gained"`
	Attribute       domain.CultivationFocus `json:"attribute"`
	LuckMultiplier  float64                 `json:"luck_multiplier"`
	LuckEffect      string                  `json:"luck_effect"`
	Event           *domain.SpecialEvent    `json:"event,omitempty"`
	Experience      int64                   `json:"experience"`
}

// BreakthroughResult is the outcome of a breakthrough attempt
type BreakthroughResult struct {
	domain.Outcome
	Attempted      bool    `json:"attempted"`
	FromRealm      int     `json:"from_realm"`
	ToRealm        int     `json:"to_realm"`
	RealmName      string  `json:"realm_name"`
	Chance         float64 `json:"chance"`
	Requirement    int64   `json:"requirement"`
	ExperienceLost int64   `json:"experience_lost"`
	Experience     int64   `json:"experience"`
}

// Status is a read-only progress snapshot
type Status struct {
	Realm              int                     `json:"realm"`
	RealmName          string                  `json:"realm_name"`
	AtMaxRealm         bool                    `json:"at_max_realm"`
	NextRealmName      string                  `json:"next_realm_name,omitempty"`
	NextRequirement    int64                   `json:"next_requirement"`
	Experience         int64                   `json:"experience"`
	Progress           float64                 `json:"progress"`
	CanBreakthrough    bool                    `json:"can_breakthrough"`
	BreakthroughChance float64                 `json:"breakthrough_chance"`
	Luck               int                     `json:"luck"`
	LuckTier           domain.LuckTier         `json:"luck_tier"`
	LuckMultiplier     float64                 `json:"luck_multiplier"`
	Focus              domain.CultivationFocus `json:"focus"`
	Training           domain.TrainingTotals   `json:"training"`
	SpiritualRoot      domain.SpiritualRoot    `json:"spiritual_root"`
}

// Engine provides pure cultivation logic (no DB dependencies)
type Engine struct {
	cfg  Config
	luck *luck.Engine
}

// NewEngine creates a cultivation engine
func NewEngine(cfg Config, luckEngine *luck.Engine) *Engine {
	return &Engine{cfg: cfg, luck: luckEngine}
}

// MaxRealm is the highest reachable realm index
func (e *Engine) MaxRealm() int {
	return len(e.cfg.Realms) - 1
}

// RealmName returns the display name of a realm index
func (e *Engine) RealmName(realm int) string {
	if realm < 0 || realm >= len(e.cfg.Realms) {
		return ""
	}
	return e.cfg.Realms[realm].Name
}

// Requirement returns the experience consumed to break into the realm after current.
// ok is false at max realm.
func (e *Engine) Requirement(current int) (int64, bool) {
	next := current + 1
	if current < 0 || next >= len(e.cfg.Realms) {
		return 0, false
	}
	return e.cfg.Realms[next].Requirement, true
}

// AdvanceOneTick credits one tick to c. It must be called exactly once per
// elapsed tick interval; the caller owns that accounting.
func (e *Engine) AdvanceOneTick(c *domain.Character, rng utils.RNG) TickResult {
	mult := e.luck.MultiplierFor(c.Luck)

	exp := e.vary(int64(float64(e.cfg.BaseExpGain)*mult), rng)
	attr := e.vary(int64(float64(e.cfg.BaseAttributeGain)*mult), rng)

	focus := c.Focus
	if !focus.Valid() {
		focus = domain.FocusHP
	}

	c.Experience += exp
	c.Training.Add(focus, attr)

	result := TickResult{
		ExpGained:       exp,
		AttributeGained: attr,
		Attribute:       focus,
		LuckMultiplier:  mult,
		LuckEffect:      e.luck.EffectLabel(mult),
	}

	if ev := e.luck.DrawEvent(c.Luck, rng); ev != nil {
		ev.Applied = applyEvent(c, focus, *ev)
		result.Event = ev
	}

	result.Experience = c.Experience
	return result
}

// vary applies the symmetric variance with a floor of one unit
func (e *Engine) vary(amount int64, rng utils.RNG) int64 {
	if e.cfg.Variance > 0 {
		factor := utils.RandomFloat(rng, 1-e.cfg.Variance, 1+e.cfg.Variance)
		amount = int64(float64(amount) * factor)
	}
	if amount < 1 {
		amount = 1
	}
	return amount
}

// applyEvent mutates c by the event amount, clamped to each field's bounds,
// and returns the change actually applied.
func applyEvent(c *domain.Character, focus domain.CultivationFocus, ev domain.SpecialEvent) int64 {
	switch ev.Effect {
	case domain.EffectExperience:
		return addFloored(&c.Experience, ev.Amount)
	case domain.EffectSpiritStone:
		return addFloored(&c.SpiritStone, ev.Amount)
	case domain.EffectGold:
		return addFloored(&c.Gold, ev.Amount)
	case domain.EffectLuck:
		before := c.Luck
		c.Luck = domain.ClampLuck(c.Luck + int(ev.Amount))
		return int64(c.Luck - before)
	case domain.EffectAttribute:
		return c.Training.Add(focus, ev.Amount)
	}
	return 0
}

func addFloored(v *int64, delta int64) int64 {
	before := *v
	*v += delta
	if *v < 0 {
		*v = 0
	}
	return *v - before
}

// BreakthroughChance is base rate minus realm depth plus luck and talent
// bonuses, clamped to [0,1].
func (e *Engine) BreakthroughChance(c *domain.Character) float64 {
	target := c.Realm + 1
	chance := e.cfg.BreakthroughBaseRate -
		e.cfg.RealmDepthPenalty*float64(target) +
		e.cfg.LuckBonusPerPoint*float64(c.Luck-domain.DefaultLuck) +
		e.talentBonus(c.SpiritualRoot)
	return utils.Clamp(chance, 0, 1)
}

func (e *Engine) talentBonus(root domain.SpiritualRoot) float64 {
	return (domain.RootMultiplier(root) - 1.0) * e.cfg.TalentBonusScale
}

// PenaltyFraction is the share of the requirement lost on failure
func (e *Engine) PenaltyFraction(caveLevel int) float64 {
	fraction := e.cfg.FailurePenaltyFraction
	if caveLevel > 1 {
		fraction -= e.cfg.CavePenaltyReduction * float64(caveLevel-1)
	}
	if fraction < e.cfg.MinPenaltyFraction {
		fraction = e.cfg.MinPenaltyFraction
	}
	return fraction
}

// AttemptBreakthrough runs a manual breakthrough against c
func (e *Engine) AttemptBreakthrough(c *domain.Character, rng utils.RNG) BreakthroughResult {
	result := BreakthroughResult{FromRealm: c.Realm, ToRealm: c.Realm, Experience: c.Experience}

	req, ok := e.Requirement(c.Realm)
	if !ok {
		result.Outcome = domain.Fail(domain.ReasonMaxRealm, MsgAtMaxRealm)
		return result
	}
	result.Requirement = req
	nextName := e.RealmName(c.Realm + 1)

	if c.Experience < req {
		result.Outcome = domain.Fail(domain.ReasonInsufficientExperience, MsgInsufficientExperience, req, nextName, c.Experience)
		return result
	}

	result.Attempted = true
	result.Chance = e.BreakthroughChance(c)

	if rng.Float64() < result.Chance {
		c.Realm++
		c.Experience -= req
		result.ToRealm = c.Realm
		result.RealmName = nextName
		result.Experience = c.Experience
		result.Outcome = domain.Succeed(MsgBreakthroughSuccess, nextName)
		return result
	}

	penalty := int64(float64(req) * e.PenaltyFraction(c.CaveLevel))
	lost := -addFloored(&c.Experience, -penalty)
	result.ExperienceLost = lost
	result.Experience = c.Experience
	result.RealmName = e.RealmName(c.Realm)
	result.Outcome = domain.Fail(domain.ReasonBreakthroughFailed, MsgBreakthroughFailed, lost)
	return result
}

// StatusOf builds a read-only snapshot of c
func (e *Engine) StatusOf(c *domain.Character) Status {
	s := Status{
		Realm:          c.Realm,
		RealmName:      e.RealmName(c.Realm),
		Experience:     c.Experience,
		Luck:           c.Luck,
		LuckTier:       e.luck.TierOf(c.Luck),
		LuckMultiplier: e.luck.MultiplierFor(c.Luck),
		Focus:          c.Focus,
		Training:       c.Training,
		SpiritualRoot:  c.SpiritualRoot,
	}

	req, ok := e.Requirement(c.Realm)
	if !ok {
		s.AtMaxRealm = true
		s.Progress = 1
		return s
	}

	s.NextRealmName = e.RealmName(c.Realm + 1)
	s.NextRequirement = req
	s.CanBreakthrough = c.Experience >= req
	s.BreakthroughChance = e.BreakthroughChance(c)
	if req > 0 {
		s.Progress = utils.Clamp(float64(c.Experience)/float64(req), 0, 1)
	} else {
		s.Progress = 1
	}
	return s
}
