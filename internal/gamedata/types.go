package gamedata

import (
	"math"
	"sort"
)

// MaxLevelMultiplier is the combat power multiplier of a creature raised to
// the level cap. Taken from the game's own level table.
const MaxLevelMultiplier = 0.79030001

// Creature is one decoded creature record plus its derived scores.
// The type list always has at least two entries; a single-typed creature
// carries the same type twice so type-pair logic never special-cases arity.
type Creature struct {
	ID      int
	Name    string
	Attack  int
	Defense int
	Stamina int
	Types   []int

	FastAbilities    []int
	ChargedAbilities []int
	// Movepool sizes as decoded, before legacy augmentation. Entries at or
	// beyond these counts are legacy moves.
	BaseFastCount    int
	BaseChargedCount int

	MaxCP        float64
	Tankiness    float64
	TrueStrength float64
}

// ComputeDerived fills the derived scores from the base stats. The
// extractor calls it once per decoded creature; callers building records by
// hand (legacy collaborators, tests) must call it themselves.
func (c *Creature) ComputeDerived() {
	atk := float64(c.Attack) + 15
	def := float64(c.Defense) + 15
	sta := float64(c.Stamina) + 15
	c.MaxCP = atk * math.Sqrt(def) * math.Sqrt(sta) * MaxLevelMultiplier * MaxLevelMultiplier / 10
	c.Tankiness = def * sta
	c.TrueStrength = atk * c.Tankiness / 10000
}

// RestrictedMultiplier returns the power multiplier of this creature kept at
// or below targetCP. CP scales with the square of the multiplier, so the
// restricted multiplier shrinks with the square root of the CP ratio. A
// creature that cannot reach targetCP at all runs at the level cap.
func (c *Creature) RestrictedMultiplier(targetCP float64) float64 {
	if c.MaxCP <= targetCP {
		return MaxLevelMultiplier
	}
	return MaxLevelMultiplier * math.Sqrt(targetCP/c.MaxCP)
}

// HasType reports whether t is one of the creature's types.
func (c *Creature) HasType(t int) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// Ability is one decoded move record. Energy is positive for fast abilities
// (generates energy) and non-positive for charged ones (the cost).
type Ability struct {
	ID       int
	Name     string
	Type     int
	Power    float64
	Duration float64 // seconds
	Energy   int

	EPS float64 // energy per second
	DPS float64 // damage per second
	DPE float64 // damage per energy
}

// ComputeDerived fills the per-second and per-energy move stats.
func (a *Ability) ComputeDerived() {
	if a.Duration != 0 {
		a.EPS = float64(a.Energy) / a.Duration
		a.DPS = a.Power / a.Duration
	}
	if a.Energy != 0 {
		a.DPE = a.Power / float64(a.Energy)
	}
}

// TypeChart maps attacking type -> defending type -> damage multiplier.
// Effectiveness is not required to be symmetric.
type TypeChart struct {
	names map[int]string
	chart map[int]map[int]float64
}

func NewTypeChart() *TypeChart {
	return &TypeChart{
		names: map[int]string{},
		chart: map[int]map[int]float64{},
	}
}

// Add stores one attacking type row.
func (tc *TypeChart) Add(id int, name string, row map[int]float64) {
	tc.names[id] = name
	tc.chart[id] = row
}

// Effectiveness returns the multiplier of attacking type att against
// defending type def. ok is false when either type is unknown.
func (tc *TypeChart) Effectiveness(att, def int) (float64, bool) {
	row, ok := tc.chart[att]
	if !ok {
		return 0, false
	}
	e, ok := row[def]
	return e, ok
}

// Has reports whether the chart carries a row for attacking type id.
func (tc *TypeChart) Has(id int) bool {
	_, ok := tc.chart[id]
	return ok
}

// Types returns all type ids in ascending order.
func (tc *TypeChart) Types() []int {
	ids := make([]int, 0, len(tc.chart))
	for id := range tc.chart {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Name returns the display name of a type id, or "" when unknown.
func (tc *TypeChart) Name(id int) string {
	return tc.names[id]
}

// Tables holds every record table produced by extraction. Written once
// during the extraction phase (plus the one-time legacy augmentation), read
// only afterwards.
type Tables struct {
	Creatures map[int]*Creature
	Abilities map[int]*Ability
	Chart     *TypeChart

	CreatureIDByName map[string]int
	AbilityIDByName  map[string]int

	// Skipped counts item templates that carried no record relevant to the
	// analysis or failed to decode.
	Skipped int
}

func newTables() *Tables {
	return &Tables{
		Creatures:        map[int]*Creature{},
		Abilities:        map[int]*Ability{},
		Chart:            NewTypeChart(),
		CreatureIDByName: map[string]int{},
		AbilityIDByName:  map[string]int{},
	}
}

// CreatureIDs returns all creature ids in ascending order.
func (t *Tables) CreatureIDs() []int {
	ids := make([]int, 0, len(t.Creatures))
	for id := range t.Creatures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AbilityIDs returns all ability ids in ascending order.
func (t *Tables) AbilityIDs() []int {
	ids := make([]int, 0, len(t.Abilities))
	for id := range t.Abilities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
