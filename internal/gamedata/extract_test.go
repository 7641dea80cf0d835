package gamedata

import (
	"math"
	"testing"
)

// Minimal wire encoder for building synthetic dumps in tests.

func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendKey(b []byte, number, wireType int) []byte {
	return appendVarint(b, uint64(number)<<3|uint64(wireType))
}

func appendLen(b []byte, number int, payload []byte) []byte {
	b = appendKey(b, number, 2)
	b = appendVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

func appendVarintField(b []byte, number int, v uint64) []byte {
	b = appendKey(b, number, 0)
	return appendVarint(b, v)
}

func appendFloatField(b []byte, number int, v float32) []byte {
	b = appendKey(b, number, 5)
	bits := math.Float32bits(v)
	return append(b, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

func appendFloats(b []byte, vs ...float32) []byte {
	for _, v := range vs {
		bits := math.Float32bits(v)
		b = append(b, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return b
}

func appendPackedVarints(b []byte, number int, ids ...uint64) []byte {
	var payload []byte
	for _, id := range ids {
		payload = appendVarint(payload, id)
	}
	return appendLen(b, number, payload)
}

// template wraps a name and details sub-message into one outer envelope.
func template(name string, detailsField int, details []byte) []byte {
	var t []byte
	t = appendLen(t, fieldTemplateName, []byte(name))
	t = appendLen(t, detailsField, details)
	return appendLen(nil, fieldItemTemplate, t)
}

func creatureDetails(primary, secondary int, sta, atk, def uint64, fast, charged []uint64) []byte {
	var d []byte
	if primary > 0 {
		d = appendVarintField(d, fieldCreaturePrimaryType, uint64(primary))
	}
	if secondary > 0 {
		d = appendVarintField(d, fieldCreatureSecondaryType, uint64(secondary))
	}
	var stats []byte
	stats = appendVarintField(stats, fieldStatStamina, sta)
	stats = appendVarintField(stats, fieldStatAttack, atk)
	stats = appendVarintField(stats, fieldStatDefense, def)
	d = appendLen(d, fieldCreatureStats, stats)
	d = appendPackedVarints(d, fieldCreatureFastMoves, fast...)
	d = appendPackedVarints(d, fieldCreatureChargedMoves, charged...)
	return d
}

func abilityDetails(typeID int, power float32, durationMs uint64, energy int64) []byte {
	var d []byte
	d = appendVarintField(d, fieldAbilityType, uint64(typeID))
	d = appendFloatField(d, fieldAbilityPower, power)
	d = appendVarintField(d, fieldAbilityDurationMs, durationMs)
	d = appendVarintField(d, fieldAbilityEnergy, uint64(energy))
	return d
}

func typeDetails(id int, effectiveness ...float32) []byte {
	var d []byte
	d = appendLen(d, fieldTypeEffectiveness, appendFloats(nil, effectiveness...))
	d = appendVarintField(d, fieldTypeID, uint64(id))
	return d
}

func TestExtractCreature(t *testing.T) {
	buf := template("V0150_POKEMON_MEWTWO", 4,
		creatureDetails(14, 0, 106, 300, 182, []uint64{200, 201}, []uint64{300}))

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := tables.Creatures[150]
	if !ok {
		t.Fatalf("expected creature 150, got %#v", tables.Creatures)
	}
	if c.Name != "MEWTWO" {
		t.Fatalf("expected name MEWTWO, got %q", c.Name)
	}
	if c.Stamina != 106 || c.Attack != 300 || c.Defense != 182 {
		t.Fatalf("unexpected stats: %+v", c)
	}
	if len(c.Types) != 2 || c.Types[0] != 14 || c.Types[1] != 14 {
		t.Fatalf("expected single type duplicated, got %v", c.Types)
	}
	if len(c.FastAbilities) != 2 || c.FastAbilities[0] != 200 || c.FastAbilities[1] != 201 {
		t.Fatalf("unexpected fast abilities: %v", c.FastAbilities)
	}
	if len(c.ChargedAbilities) != 1 || c.ChargedAbilities[0] != 300 {
		t.Fatalf("unexpected charged abilities: %v", c.ChargedAbilities)
	}
	if c.BaseFastCount != 2 || c.BaseChargedCount != 1 {
		t.Fatalf("unexpected base movepool counts: %+v", c)
	}
	if tables.CreatureIDByName["MEWTWO"] != 150 {
		t.Fatalf("name lookup not populated")
	}
	if c.MaxCP <= 0 || c.Tankiness <= 0 || c.TrueStrength <= 0 {
		t.Fatalf("derived stats not computed: %+v", c)
	}
}

func TestExtractCreatureDualType(t *testing.T) {
	buf := template("V0006_POKEMON_CHARIZARD", 4,
		creatureDetails(10, 3, 156, 223, 173, []uint64{1}, []uint64{2}))
	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := tables.Creatures[6]
	if c == nil || len(c.Types) != 2 || c.Types[0] != 10 || c.Types[1] != 3 {
		t.Fatalf("unexpected types: %+v", c)
	}
}

func TestExtractCreatureUnknownFieldsSkipped(t *testing.T) {
	d := creatureDetails(5, 0, 10, 20, 30, []uint64{1}, []uint64{2})
	d = appendVarintField(d, 99, 77) // junk field the schema never defined
	buf := template("V0001_POKEMON_BULBASAUR", 4, d)

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.Creatures[1] == nil {
		t.Fatalf("expected creature despite unknown field")
	}
}

func TestExtractExcludedCreature(t *testing.T) {
	buf := template("V0150_POKEMON_MEWTWO", 4,
		creatureDetails(14, 0, 106, 300, 182, []uint64{200}, []uint64{300}))
	x := Extractor{Excluded: map[string]bool{"MEWTWO": true}}
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.Creatures) != 0 {
		t.Fatalf("expected excluded creature to be dropped")
	}
	if tables.Skipped != 1 {
		t.Fatalf("expected 1 skipped template, got %d", tables.Skipped)
	}
}

func TestExtractAbility(t *testing.T) {
	buf := template("V0013_MOVE_WRAP", 2, abilityDetails(1, 25, 4000, -20))

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := tables.Abilities[13]
	if !ok {
		t.Fatalf("expected ability 13")
	}
	if a.Name != "WRAP" || a.Type != 1 {
		t.Fatalf("unexpected ability: %+v", a)
	}
	if a.Power != 25 {
		t.Fatalf("expected power 25, got %g", a.Power)
	}
	if a.Duration != 4.0 {
		t.Fatalf("expected duration 4s, got %g", a.Duration)
	}
	if a.Energy != -20 {
		t.Fatalf("expected energy -20, got %d", a.Energy)
	}
	if a.DPS != 25.0/4.0 || a.EPS != -20.0/4.0 {
		t.Fatalf("derived move stats wrong: %+v", a)
	}
}

func TestExtractTypeRow(t *testing.T) {
	buf := template("POKEMON_TYPE_FIRE", 8, typeDetails(10, 1.0, 0.8, 1.25))

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tables.Chart.Has(10) {
		t.Fatalf("expected type row 10")
	}
	if tables.Chart.Name(10) != "FIRE" {
		t.Fatalf("unexpected type name %q", tables.Chart.Name(10))
	}
	// 0.8 is not exact in float32; compare against the widened value the
	// extractor actually stores.
	for def, want := range map[int]float64{1: 1.0, 2: float64(float32(0.8)), 3: 1.25} {
		got, ok := tables.Chart.Effectiveness(10, def)
		if !ok || got != want {
			t.Fatalf("effectiveness vs %d: expected %g, got %g (ok=%v)", def, want, got, ok)
		}
	}
	if _, ok := tables.Chart.Effectiveness(10, 4); ok {
		t.Fatalf("expected no entry for defending type 4")
	}
}

func TestExtractUnmatchedNameSkipped(t *testing.T) {
	buf := template("BADGE_TRAVEL_KM", 2, appendVarintField(nil, 1, 5))
	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.Skipped != 1 {
		t.Fatalf("expected 1 skipped template, got %d", tables.Skipped)
	}
}

func TestExtractTemplateWithoutDetailsSkipped(t *testing.T) {
	var inner []byte
	inner = appendLen(inner, fieldTemplateName, []byte("V0001_POKEMON_BULBASAUR"))
	buf := appendLen(nil, fieldItemTemplate, inner)

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.Creatures) != 0 || tables.Skipped != 1 {
		t.Fatalf("expected template without details to be skipped")
	}
}

func TestExtractMalformedTemplateSkipped(t *testing.T) {
	// A template whose inner field declares more bytes than it has.
	var inner []byte
	inner = appendKey(inner, fieldTemplateName, 2)
	inner = appendVarint(inner, 100)
	inner = append(inner, 'x')
	buf := appendLen(nil, fieldItemTemplate, inner)
	// Followed by a healthy record to prove decoding continues.
	buf = append(buf, template("V0013_MOVE_WRAP", 2, abilityDetails(1, 25, 4000, -20))...)

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.Skipped != 1 {
		t.Fatalf("expected 1 skipped template, got %d", tables.Skipped)
	}
	if _, ok := tables.Abilities[13]; !ok {
		t.Fatalf("expected the following record to decode")
	}
}

func TestExtractMalformedOuterEnvelopeFatal(t *testing.T) {
	buf := appendKey(nil, fieldItemTemplate, 2)
	buf = appendVarint(buf, 100) // declares 100 bytes, none follow

	var x Extractor
	if _, err := x.Extract(buf); err == nil {
		t.Fatalf("expected fatal error for malformed outer envelope")
	}
}

func TestExtractSkipsForeignOuterFields(t *testing.T) {
	var buf []byte
	buf = appendVarintField(buf, 1, 42) // not an item template
	buf = append(buf, template("V0013_MOVE_WRAP", 2, abilityDetails(1, 25, 4000, -20))...)

	var x Extractor
	tables, err := x.Extract(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tables.Abilities[13]; !ok {
		t.Fatalf("expected ability record")
	}
}
