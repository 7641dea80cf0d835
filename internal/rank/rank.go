// Package rank cross-multiplies every simulated moveset against every
// ordered pair of opponent types and produces the ranked result pools the
// report writer and the API serve from.
package rank

import (
	"sort"

	"github.com/Calmarius/pogoproto/internal/gamedata"
	"github.com/Calmarius/pogoproto/internal/sim"
)

// Params configure one ranking pass.
type Params struct {
	Battle sim.Params
	// CombatMultiplier is the attacker power multiplier of the main run,
	// normally the level-cap multiplier.
	CombatMultiplier float64
	// TargetCP is the combat power ceiling of the restricted run.
	TargetCP float64
}

// MovesetResult is one creature + fast + charged combination with its
// derived metrics. DefenderTypes is zero for context-free entries and the
// opponent type pair for counter entries.
type MovesetResult struct {
	CreatureID int
	FastID     int
	ChargedID  int

	MsDPS      float64 // primary+secondary sustained DPS
	DPS        float64 // MsDPS scaled by (attack+15)
	TruePower  float64 // damage dealt until fainting
	Restricted float64 // CP-capped metric

	Legacy        bool
	HitsPerWindow int
	ChargedCasts  int

	DefenderTypes [2]int
}

// Rankings holds every result pool of one pass. Pools are unsorted; use the
// Sort functions before presenting them.
type Rankings struct {
	// Overall has one entry per dodge-eligible moveset, no opponent context.
	Overall []MovesetResult
	// ByType pools movesets by damage type. A moveset whose fast and charged
	// types differ contributes its halves to both pools separately.
	ByType map[int][]MovesetResult
	// Counters pools context entries by ordered defender type pair,
	// restricted to pairs where first <= second.
	Counters map[int]map[int][]MovesetResult
}

// Rank runs the simulator for every creature and (fast, charged) pair and
// builds all result pools. Movesets referencing missing abilities or types
// are skipped; so are movesets that cannot dodge-cast (no fast cast fits in
// a strike window) and zero-duration fast abilities.
func Rank(t *gamedata.Tables, p Params) *Rankings {
	r := &Rankings{
		ByType:   map[int][]MovesetResult{},
		Counters: map[int]map[int][]MovesetResult{},
	}
	typeIDs := t.Chart.Types()

	for _, cid := range t.CreatureIDs() {
		c := t.Creatures[cid]
		for fi, fid := range c.FastAbilities {
			fast, ok := t.Abilities[fid]
			if !ok || fast.Duration == 0 {
				continue
			}
			if sim.HitsPerWindow(p.Battle.StrikeInterval, fast.Duration) <= 0 {
				continue
			}
			for ci, chid := range c.ChargedAbilities {
				charged, ok := t.Abilities[chid]
				if !ok {
					continue
				}
				if !t.Chart.Has(fast.Type) || !t.Chart.Has(charged.Type) {
					continue
				}
				legacy := fi >= c.BaseFastCount || ci >= c.BaseChargedCount
				r.add(t, typeIDs, c, fast, charged, legacy, p)
			}
		}
	}
	return r
}

func (r *Rankings) add(t *gamedata.Tables, typeIDs []int, c *gamedata.Creature, fast, charged *gamedata.Ability, legacy bool, p Params) {
	combat := sim.Simulate(c, fast, charged, p.CombatMultiplier, p.Battle)
	restrictedMult := c.RestrictedMultiplier(p.TargetCP)
	restricted := sim.Simulate(c, fast, charged, restrictedMult, p.Battle)
	restrictedScale := restrictedMult * restrictedMult * restrictedMult

	base := MovesetResult{
		CreatureID:    c.ID,
		FastID:        fast.ID,
		ChargedID:     charged.ID,
		Legacy:        legacy,
		HitsPerWindow: combat.HitsPerWindow,
		ChargedCasts:  combat.ChargedCasts,
	}
	canDodge := combat.HitsPerWindow > 0

	fill := func(res *MovesetResult, primary, secondary, restrictedPrimary, restrictedSecondary float64) {
		res.MsDPS = primary + secondary
		res.DPS = res.MsDPS * (float64(c.Attack) + 15)
		res.TruePower = damageTillFaint(res.MsDPS, c.TrueStrength, canDodge)
		res.Restricted = restrictedScale * (restrictedPrimary + restrictedSecondary) * (float64(c.Attack) + 15)
	}

	overall := base
	fill(&overall, combat.PrimaryDPS, combat.SecondaryDPS, restricted.PrimaryDPS, restricted.SecondaryDPS)
	r.Overall = append(r.Overall, overall)

	if fast.Type == charged.Type {
		r.ByType[fast.Type] = append(r.ByType[fast.Type], overall)
	} else {
		// Split the contribution between the two damage type pools.
		primaryOnly := base
		fill(&primaryOnly, combat.PrimaryDPS, 0, restricted.PrimaryDPS, 0)
		r.ByType[fast.Type] = append(r.ByType[fast.Type], primaryOnly)

		secondaryOnly := base
		fill(&secondaryOnly, 0, combat.SecondaryDPS, 0, restricted.SecondaryDPS)
		r.ByType[charged.Type] = append(r.ByType[charged.Type], secondaryOnly)
	}

	// Counter pools: every ordered defender pair, skipping first > second so
	// each unordered pair is computed once. Reports key off this ordering.
	for _, t1 := range typeIDs {
		for _, t2 := range typeIDs {
			if t1 > t2 {
				continue
			}
			fp, sp, ok := pairWeights(t.Chart, fast.Type, charged.Type, t1, t2)
			if !ok {
				continue
			}
			entry := base
			entry.DefenderTypes = [2]int{t1, t2}
			fill(&entry,
				combat.PrimaryDPS*fp, combat.SecondaryDPS*sp,
				restricted.PrimaryDPS*fp, restricted.SecondaryDPS*sp)
			bucket := r.Counters[t1]
			if bucket == nil {
				bucket = map[int][]MovesetResult{}
				r.Counters[t1] = bucket
			}
			bucket[t2] = append(bucket[t2], entry)
		}
	}
}

// pairWeights returns the effectiveness factors of the fast and charged
// damage against the defender pair (t1, t2). A same-type pair uses the
// single lookup; a cross-type pair multiplies both types' factors.
func pairWeights(chart *gamedata.TypeChart, fastType, chargedType, t1, t2 int) (float64, float64, bool) {
	f1, ok := chart.Effectiveness(fastType, t1)
	if !ok {
		return 0, 0, false
	}
	c1, ok := chart.Effectiveness(chargedType, t1)
	if !ok {
		return 0, 0, false
	}
	if t1 == t2 {
		return f1, c1, true
	}
	f2, ok := chart.Effectiveness(fastType, t2)
	if !ok {
		return 0, 0, false
	}
	c2, ok := chart.Effectiveness(chargedType, t2)
	if !ok {
		return 0, 0, false
	}
	return f1 * f2, c1 * c2, true
}

// damageTillFaint scales sustained DPS by the creature's strength score. A
// moveset that cannot weave casts between dodges takes every hit, cutting
// effective survivability to a quarter.
func damageTillFaint(msDPS, trueStrength float64, canDodge bool) float64 {
	factor := 0.25
	if canDodge {
		factor = 1
	}
	return msDPS * trueStrength * factor
}

// Metric selects one ranking metric of a result.
type Metric func(*MovesetResult) float64

func ByMsDPS(r *MovesetResult) float64      { return r.MsDPS }
func ByDPS(r *MovesetResult) float64        { return r.DPS }
func ByTruePower(r *MovesetResult) float64  { return r.TruePower }
func ByRestricted(r *MovesetResult) float64 { return r.Restricted }

// Sort orders results descending by the metric. Ties break on creature id,
// then fast id, then charged id, so output order never depends on sort
// stability.
func Sort(rs []MovesetResult, metric Metric) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := &rs[i], &rs[j]
		am, bm := metric(a), metric(b)
		if am != bm {
			return am > bm
		}
		if a.CreatureID != b.CreatureID {
			return a.CreatureID < b.CreatureID
		}
		if a.FastID != b.FastID {
			return a.FastID < b.FastID
		}
		return a.ChargedID < b.ChargedID
	})
}

// Sorted returns a copy of rs ordered by the metric.
func Sorted(rs []MovesetResult, metric Metric) []MovesetResult {
	cp := append([]MovesetResult(nil), rs...)
	Sort(cp, metric)
	return cp
}
