package gamedata

import "fmt"

// AppendLegacyFast appends a legacy fast ability to a creature's movepool,
// resolving both sides by name. Runs once, after extraction and before any
// simulation; BaseFastCount is untouched so the appended entry ranks as
// legacy.
func (t *Tables) AppendLegacyFast(creatureName, abilityName string) error {
	c, a, err := t.resolveLegacy(creatureName, abilityName)
	if err != nil {
		return err
	}
	c.FastAbilities = append(c.FastAbilities, a.ID)
	return nil
}

// AppendLegacyCharged appends a legacy charged ability to a creature's
// movepool. See AppendLegacyFast.
func (t *Tables) AppendLegacyCharged(creatureName, abilityName string) error {
	c, a, err := t.resolveLegacy(creatureName, abilityName)
	if err != nil {
		return err
	}
	c.ChargedAbilities = append(c.ChargedAbilities, a.ID)
	return nil
}

func (t *Tables) resolveLegacy(creatureName, abilityName string) (*Creature, *Ability, error) {
	cid, ok := t.CreatureIDByName[creatureName]
	if !ok {
		return nil, nil, fmt.Errorf("legacy move: unknown creature %q", creatureName)
	}
	aid, ok := t.AbilityIDByName[abilityName]
	if !ok {
		return nil, nil, fmt.Errorf("legacy move: unknown ability %q", abilityName)
	}
	return t.Creatures[cid], t.Abilities[aid], nil
}
