// Package sim replays a fixed-duration mock battle for one creature and one
// fast/charged ability pair. The model is pure and deterministic: the
// attacker weaves fast casts between the opponent's strikes (dodging every
// one of them), banks energy, and fires the charged ability whenever the
// energy pool covers its cost.
package sim

import (
	"math"

	"github.com/Calmarius/pogoproto/internal/gamedata"
)

const (
	stabMultiplier = 1.25
	energyCap      = 100
	// Reaction reserve subtracted from the strike interval before counting
	// how many fast casts fit between two opponent strikes.
	strikeReaction = 0.49
	// Shortest possible dodge window after a batch of fast casts.
	minDodgeWindow = 0.5
)

// Params are the battle model constants. All of them come from
// configuration; the simulator defaults nothing.
type Params struct {
	StrikeInterval float64 // seconds between opponent strikes
	Duration       float64 // simulated battle length in seconds
	RegenLifetime  float64 // seconds the creature survives incoming damage
}

// DamageInfo is the outcome of one simulated battle. PrimaryDPS and
// SecondaryDPS are the fast and charged ability's accumulated damage divided
// by total elapsed simulated time, so callers can re-weight the two against
// different opponent type multipliers.
type DamageInfo struct {
	PrimaryDPS    float64
	SecondaryDPS  float64
	FastCasts     int
	ChargedCasts  int
	HitsPerWindow int
}

// HitsPerWindow returns how many consecutive fast casts fit between two
// opponent strikes. A result of zero or less (the interval can be shorter
// than the reaction reserve) means the moveset cannot dodge-cast at all;
// such movesets must be excluded from ranking by the caller. fastDuration
// must be non-zero (data precondition, not checked here).
func HitsPerWindow(strikeInterval, fastDuration float64) int {
	return int(math.Floor((strikeInterval - strikeReaction) / fastDuration))
}

// Simulate replays one battle. powerMultiplier scales the passive energy
// gained from damage taken; running the same moveset twice with different
// multipliers yields independent metric families from one routine.
func Simulate(c *gamedata.Creature, fast, charged *gamedata.Ability, powerMultiplier float64, p Params) DamageInfo {
	hits := HitsPerWindow(p.StrikeInterval, fast.Duration)
	info := DamageInfo{HitsPerWindow: hits}

	var clock, energy float64
	var primary, secondary float64

	for clock < p.Duration {
		if energy >= float64(-charged.Energy) {
			// Enough energy banked: fire the charged ability once.
			secondary += charged.Power * stab(c, charged)
			clock += charged.Duration
			energy += float64(charged.Energy)
			info.ChargedCasts++
		} else {
			// Pack as many fast casts as fit before the next strike.
			h := float64(hits)
			primary += fast.Power * stab(c, fast) * h
			clock += fast.Duration * h
			energy += float64(fast.Energy) * h
			// Passive energy from damage soaked over the cast time.
			energy += fast.Duration / p.RegenLifetime * 0.5 * (float64(c.Stamina) + 15) * powerMultiplier * h
			info.FastCasts += hits

			// Burn the rest of the strike interval dodging.
			leftover := p.StrikeInterval - fast.Duration*h
			if leftover < minDodgeWindow {
				leftover = minDodgeWindow
			}
			clock += leftover
		}
		if energy > energyCap {
			energy = energyCap
		}
	}

	info.PrimaryDPS = primary / clock
	info.SecondaryDPS = secondary / clock
	return info
}

func stab(c *gamedata.Creature, a *gamedata.Ability) float64 {
	if c.HasType(a.Type) {
		return stabMultiplier
	}
	return 1
}
