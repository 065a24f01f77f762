package production

import "github.com/osse101/IdleCultivation_Go/internal/domain"

// Seed is a farm recipe
type Seed struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	GrowthHours float64 `json:"growth_hours" validate:"gt=0"`
	YieldMin    int64   `json:"yield_min" validate:"gte=1"`
	YieldMax    int64   `json:"yield_max" validate:"gtefield=YieldMin"`
	ProductID   string  `json:"product_id" validate:"required"`
}

// Material is one ingredient of an alchemy recipe
type Material struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

// Recipe is an alchemy recipe
type Recipe struct {
	ID                   string         `json:"id" validate:"required"`
	Name                 string         `json:"name" validate:"required"`
	Quality              domain.Quality `json:"quality" validate:"required"`
	RequiredRealm        int            `json:"required_realm" validate:"gte=0"`
	RequiredAlchemyLevel int            `json:"required_alchemy_level" validate:"gte=1"`
	BaseMinutes          int            `json:"base_minutes" validate:"gt=0"`
	Materials            []Material     `json:"materials" validate:"min=1,dive"`
	ProductID            string         `json:"product_id" validate:"required"`
}

// PlotTypeModifier scales farm growth speed and yield
type PlotTypeModifier struct {
	Speed float64 `json:"speed" validate:"gt=0"`
	Yield float64 `json:"yield" validate:"gt=0"`
}

// UnlockRequirement gates a farm plot
type UnlockRequirement struct {
	CaveLevel int   `json:"cave_level" validate:"gte=0"`
	Gold      int64 `json:"gold" validate:"gte=0"`
}

func defaultSeeds() []Seed {
	return []Seed{
		{ID: "spirit_herb_seed", Name: "Spirit Herb Seed", GrowthHours: 2, YieldMin: 1, YieldMax: 3, ProductID: "spirit_herb"},
		{ID: "lingzhi_seed", Name: "Lingzhi Seed", GrowthHours: 6, YieldMin: 1, YieldMax: 2, ProductID: "lingzhi"},
		{ID: "qi_grass_seed", Name: "Qi Gathering Grass Seed", GrowthHours: 4, YieldMin: 2, YieldMax: 4, ProductID: "qi_grass"},
	}
}

func defaultRecipes() []Recipe {
	return []Recipe{
		{
			ID: "healing_pill", Name: "Healing Pill", Quality: domain.QualityCommon,
			RequiredRealm: 1, RequiredAlchemyLevel: 1, BaseMinutes: 30, ProductID: "healing_pill",
			Materials: []Material{{ItemID: "spirit_herb", Quantity: 2}, {ItemID: "clear_water", Quantity: 1}},
		},
		{
			ID: "qi_pill", Name: "Qi Gathering Pill", Quality: domain.QualityCommon,
			RequiredRealm: 1, RequiredAlchemyLevel: 1, BaseMinutes: 45, ProductID: "qi_pill",
			Materials: []Material{{ItemID: "qi_grass", Quantity: 3}, {ItemID: "spirit_stone_powder", Quantity: 1}},
		},
		{
			ID: "strength_pill", Name: "Strength Pill", Quality: domain.QualityUncommon,
			RequiredRealm: 5, RequiredAlchemyLevel: 1, BaseMinutes: 60, ProductID: "strength_pill",
			Materials: []Material{{ItemID: "tiger_bone_grass", Quantity: 2}, {ItemID: "iron_essence", Quantity: 1}, {ItemID: "lingzhi", Quantity: 1}},
		},
		{
			ID: "wisdom_pill", Name: "Wisdom Pill", Quality: domain.QualityUncommon,
			RequiredRealm: 5, RequiredAlchemyLevel: 1, BaseMinutes: 60, ProductID: "wisdom_pill",
			Materials: []Material{{ItemID: "wisdom_flower", Quantity: 2}, {ItemID: "moonlight_dew", Quantity: 1}, {ItemID: "lingzhi", Quantity: 1}},
		},
		{
			ID: "defense_pill", Name: "Defense Pill", Quality: domain.QualityUncommon,
			RequiredRealm: 5, RequiredAlchemyLevel: 1, BaseMinutes: 60, ProductID: "defense_pill",
			Materials: []Material{{ItemID: "turtle_shell_grass", Quantity: 2}, {ItemID: "dark_iron_powder", Quantity: 1}, {ItemID: "lingzhi", Quantity: 1}},
		},
		{
			ID: "breakthrough_pill", Name: "Breakthrough Pill", Quality: domain.QualityRare,
			RequiredRealm: 9, RequiredAlchemyLevel: 1, BaseMinutes: 120, ProductID: "breakthrough_pill",
			Materials: []Material{{ItemID: "millennium_lingzhi", Quantity: 1}, {ItemID: "realm_breaking_grass", Quantity: 3}, {ItemID: "thunder_stone", Quantity: 1}, {ItemID: "dragon_blood", Quantity: 1}},
		},
		{
			ID: "luck_pill", Name: "Luck Pill", Quality: domain.QualityRare,
			RequiredRealm: 9, RequiredAlchemyLevel: 1, BaseMinutes: 90, ProductID: "luck_pill",
			Materials: []Material{{ItemID: "four_leaf_clover", Quantity: 5}, {ItemID: "luck_stone", Quantity: 2}, {ItemID: "phoenix_feather", Quantity: 1}},
		},
	}
}

// Catalog indexes seeds and recipes by id
type Catalog struct {
	seeds   map[string]Seed
	recipes map[string]Recipe
}

// NewCatalog indexes the configured seeds and recipes
func NewCatalog(seeds []Seed, recipes []Recipe) *Catalog {
	c := &Catalog{
		seeds:   make(map[string]Seed, len(seeds)),
		recipes: make(map[string]Recipe, len(recipes)),
	}
	for _, s := range seeds {
		c.seeds[s.ID] = s
	}
	for _, r := range recipes {
		c.recipes[r.ID] = r
	}
	return c
}

// Seed looks up a farm seed
func (c *Catalog) Seed(id string) (Seed, bool) {
	s, ok := c.seeds[id]
	return s, ok
}

// Recipe looks up an alchemy recipe
func (c *Catalog) Recipe(id string) (Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}
