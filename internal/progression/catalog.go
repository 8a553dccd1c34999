package progression

const (
	CustomizationTypeBodyColor = "body_color"
	CustomizationTypeEyeColor  = "eye_color"
	CustomizationTypeAccessory = "accessory"
)

// Unlock is one cosmetic (type, value) pair granted at a level threshold.
type Unlock struct {
	Type          string `json:"type"`
	Value         string `json:"value"`
	LevelRequired int    `json:"level_required"`
}

// Option is a catalog entry as presented to the client, with its unlock
// state resolved for a particular user.
type Option struct {
	Value         string `json:"value"`
	DisplayName   string `json:"display_name"`
	LevelRequired int    `json:"level_required"`
	IsUnlocked    bool   `json:"is_unlocked"`
}

type catalogEntry struct {
	value         string
	displayName   string
	levelRequired int
	starter       bool
}

// Catalog is a read-only snapshot of the cosmetic reward table. It is
// injected into the ledger and the character service so tests can supply a
// fixed table.
type Catalog struct {
	entries map[string][]catalogEntry
	order   []string
}

// DefaultCatalog returns the production reward table.
func DefaultCatalog() *Catalog {
	return &Catalog{
		order: []string{CustomizationTypeBodyColor, CustomizationTypeEyeColor, CustomizationTypeAccessory},
		entries: map[string][]catalogEntry{
			CustomizationTypeBodyColor: {
				{"brown", "Brown", 1, true},
				{"golden", "Golden", 1, true},
				{"black", "Black", 2, false},
				{"white", "White", 3, true},
				{"spotted", "Spotted", 5, false},
				{"blue", "Blue Magic", 10, false},
				{"purple", "Purple Magic", 15, false},
				{"rainbow", "Rainbow Magic", 20, false},
			},
			CustomizationTypeEyeColor: {
				{"brown", "Brown", 1, true},
				{"blue", "Blue", 2, true},
				{"green", "Green", 3, true},
				{"amber", "Amber", 4, false},
				{"purple", "Purple Magic", 12, false},
				{"rainbow", "Rainbow Magic", 18, false},
			},
			CustomizationTypeAccessory: {
				{"none", "None", 1, true},
				{"collar", "Collar", 2, true},
				{"hat", "Hat", 4, true},
				{"bow_tie", "Bow Tie", 6, false},
				{"glasses", "Glasses", 8, false},
				{"cape", "Super Cape", 12, false},
				{"crown", "Royal Crown", 16, false},
				{"wings", "Magic Wings", 20, false},
			},
		},
	}
}

// Types returns the customization types in presentation order.
func (c *Catalog) Types() []string {
	return c.order
}

// LevelRequired returns the unlock threshold for a (type, value) pair, or 1
// when the pair is unknown.
func (c *Catalog) LevelRequired(customizationType, value string) int {
	for _, e := range c.entries[customizationType] {
		if e.value == value {
			return e.levelRequired
		}
	}
	return 1
}

// Contains reports whether the (type, value) pair exists in the catalog.
func (c *Catalog) Contains(customizationType, value string) bool {
	for _, e := range c.entries[customizationType] {
		if e.value == value {
			return true
		}
	}
	return false
}

// IsStarter reports whether the value is allowed in the one-time starter
// selection.
func (c *Catalog) IsStarter(customizationType, value string) bool {
	for _, e := range c.entries[customizationType] {
		if e.value == value {
			return e.starter
		}
	}
	return false
}

// UnlocksAtLevel returns every pair whose threshold is exactly level.
func (c *Catalog) UnlocksAtLevel(level int) []Unlock {
	return c.UnlocksInRange(level-1, level)
}

// UnlocksInRange returns every pair whose threshold falls in (oldLevel,
// newLevel], i.e. everything a user acquires by climbing from oldLevel to
// newLevel. Multi-level jumps therefore grant all intermediate tiers at once.
func (c *Catalog) UnlocksInRange(oldLevel, newLevel int) []Unlock {
	var unlocks []Unlock
	for _, customizationType := range c.order {
		for _, e := range c.entries[customizationType] {
			if e.levelRequired > oldLevel && e.levelRequired <= newLevel {
				unlocks = append(unlocks, Unlock{
					Type:          customizationType,
					Value:         e.value,
					LevelRequired: e.levelRequired,
				})
			}
		}
	}
	return unlocks
}

// Options lists the catalog for one customization type with unlock state
// resolved from the user's level and explicitly granted pairs.
func (c *Catalog) Options(customizationType string, level int, granted map[string]bool) []Option {
	entries := c.entries[customizationType]
	options := make([]Option, 0, len(entries))
	for _, e := range entries {
		options = append(options, Option{
			Value:         e.value,
			DisplayName:   e.displayName,
			LevelRequired: e.levelRequired,
			IsUnlocked:    e.levelRequired <= level || granted[e.value],
		})
	}
	return options
}
