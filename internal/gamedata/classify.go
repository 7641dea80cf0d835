package gamedata

import (
	"regexp"
	"strconv"
)

// Kind classifies an item template by its name string.
type Kind int

const (
	KindUnknown Kind = iota
	KindCreature
	KindAbility
	KindType
)

var (
	creaturePattern = regexp.MustCompile(`^V(\d+)_POKEMON_(.*)$`)
	abilityPattern  = regexp.MustCompile(`^V(\d+)_MOVE_(.*)$`)
	typePattern     = regexp.MustCompile(`^POKEMON_TYPE_(.*)$`)
)

// Classify matches a template name against the three record name patterns.
// For creatures and abilities it returns the numeric id embedded in the name
// and the remainder; for types the id comes from the record itself and the
// returned id is 0.
func Classify(name string) (Kind, int, string) {
	if m := creaturePattern.FindStringSubmatch(name); m != nil {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return KindUnknown, 0, ""
		}
		return KindCreature, id, m[2]
	}
	if m := abilityPattern.FindStringSubmatch(name); m != nil {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return KindUnknown, 0, ""
		}
		return KindAbility, id, m[2]
	}
	if m := typePattern.FindStringSubmatch(name); m != nil {
		return KindType, 0, m[1]
	}
	return KindUnknown, 0, ""
}
