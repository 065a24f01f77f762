package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrainingTotals_AddFloorsAtZero(t *testing.T) {
	var tt TrainingTotals
	assert.Equal(t, int64(5), tt.Add(FocusPhysicalAttack, 5))
	assert.Equal(t, int64(-5), tt.Add(FocusPhysicalAttack, -20))
	assert.Zero(t, tt.Get(FocusPhysicalAttack))
	assert.Zero(t, tt.Add(CultivationFocus("SPEED"), 10))
}

func TestCultivationFocus_Valid(t *testing.T) {
	for _, f := range AllFocuses {
		assert.True(t, f.Valid(), f)
	}
	assert.False(t, CultivationFocus("hp").Valid())
}

func TestClampLuck(t *testing.T) {
	assert.Equal(t, 0, ClampLuck(-3))
	assert.Equal(t, 42, ClampLuck(42))
	assert.Equal(t, 100, ClampLuck(101))
}

func TestRootMultiplier(t *testing.T) {
	assert.Equal(t, 3.0, RootMultiplier(RootHeavenly))
	assert.Equal(t, 1.0, RootMultiplier(SpiritualRoot("UNKNOWN")))
}

func TestQualityItemID(t *testing.T) {
	assert.Equal(t, "qi_pill", QualityItemID("qi_pill", QualityCommon, QualityCommon))
	assert.Equal(t, "qi_pill.rare", QualityItemID("qi_pill", QualityCommon, QualityRare))
}

func TestProductionSlot_Clear(t *testing.T) {
	id := "spirit_herb_seed"
	s := ProductionSlot{RecipeID: &id, Stage: StageReady, Ready: true, SpoilSeed: 9, Unlocked: true}
	s.Clear()
	assert.False(t, s.Occupied())
	assert.Equal(t, StageEmpty, s.Stage)
	assert.Zero(t, s.SpoilSeed)
	assert.True(t, s.Unlocked)
}

func TestOutcome(t *testing.T) {
	ok := Succeed("gained %d", 3)
	assert.True(t, ok.Success)
	assert.Equal(t, ReasonOK, ok.Reason)
	assert.Equal(t, "gained 3", ok.Message)

	fail := Fail(ReasonCooldown, "wait %ds", 12)
	assert.True(t, fail.Failed(ReasonCooldown))
	assert.False(t, fail.Failed(ReasonNotOnline))
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(fmt.Errorf("%w: x", ErrCharacterNotFound)))
	assert.True(t, IsExpected(ErrInvalidFocus))
	assert.False(t, IsExpected(fmt.Errorf("%w: db down", ErrInfrastructure)))
	assert.False(t, IsExpected(ErrInvariantViolation))
}
