package gamedata

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Calmarius/pogoproto/internal/protowire"
)

// Field numbers of the GAME_MASTER dump. The schema is undocumented; these
// are the handful of fields the analysis needs, recovered by convention.
// Unknown field numbers are skipped without error.
const (
	fieldItemTemplate = 2 // outer buffer: one length-delimited template per item

	fieldTemplateName = 1 // template: name string
	// The details sub-message sits under one of these template fields,
	// depending on the record kind. The last one seen wins.
	fieldDetailsA = 2
	fieldDetailsB = 4
	fieldDetailsC = 8

	fieldCreaturePrimaryType   = 4
	fieldCreatureSecondaryType = 5
	fieldCreatureStats         = 8
	fieldCreatureFastMoves     = 9  // packed varints, no element count
	fieldCreatureChargedMoves  = 10 // packed varints, no element count

	fieldStatStamina = 1
	fieldStatAttack  = 2
	fieldStatDefense = 3

	fieldAbilityType       = 3
	fieldAbilityPower      = 4 // float32
	fieldAbilityDurationMs = 12
	fieldAbilityEnergy     = 15 // varint reinterpreted as signed

	fieldTypeEffectiveness = 1 // packed float32s, defending type ids from 1 up
	fieldTypeID            = 2
)

// Extractor walks a decoded GAME_MASTER buffer and populates the record
// tables. Excluded names (remainder after classification) are dropped before
// extraction.
type Extractor struct {
	Excluded map[string]bool
}

// Extract consumes the outer buffer as a flat sequence of item template
// envelopes. A malformed template is skipped; a decode failure on the outer
// envelope itself aborts the whole run.
func (x *Extractor) Extract(buf []byte) (*Tables, error) {
	tables := newTables()
	d := protowire.NewDecoder(buf)
	for d.Remaining() > 0 {
		f, err := d.ReadField()
		if err != nil {
			return nil, fmt.Errorf("outer envelope: %w", err)
		}
		if f.Type != protowire.TypeLengthDelimited || f.Number != fieldItemTemplate {
			continue
		}
		if !x.extractTemplate(tables, f.Bytes) {
			tables.Skipped++
		}
	}
	return tables, nil
}

// extractTemplate decodes one item template. It reports whether the template
// produced a record; decode errors inside a template drop that template only.
func (x *Extractor) extractTemplate(tables *Tables, buf []byte) bool {
	d := protowire.NewDecoder(buf)
	var name, details protowire.Field
	for d.Remaining() > 0 {
		f, err := d.ReadField()
		if err != nil {
			return false
		}
		switch f.Number {
		case fieldTemplateName:
			name = f
		case fieldDetailsA, fieldDetailsB, fieldDetailsC:
			details = f
		}
	}
	if name.Type != protowire.TypeLengthDelimited || details.Type != protowire.TypeLengthDelimited {
		return false
	}

	kind, id, rest := Classify(string(name.Bytes))
	switch kind {
	case KindCreature:
		if x.Excluded[rest] {
			return false
		}
		return extractCreature(tables, id, rest, details.Bytes)
	case KindAbility:
		return extractAbility(tables, id, rest, details.Bytes)
	case KindType:
		return extractTypeRow(tables, rest, details.Bytes)
	}
	return false
}

func extractCreature(tables *Tables, id int, name string, buf []byte) bool {
	c := &Creature{ID: id, Name: name}
	var primary, secondary int
	var hasPrimary, hasSecondary bool

	d := protowire.NewDecoder(buf)
	for d.Remaining() > 0 {
		f, err := d.ReadField()
		if err != nil {
			return false
		}
		switch f.Number {
		case fieldCreaturePrimaryType:
			if f.Type == protowire.TypeVarint {
				primary = int(f.Varint)
				hasPrimary = true
			}
		case fieldCreatureSecondaryType:
			if f.Type == protowire.TypeVarint {
				secondary = int(f.Varint)
				hasSecondary = true
			}
		case fieldCreatureStats:
			if f.Type != protowire.TypeLengthDelimited {
				continue
			}
			if !extractBaseStats(c, f.Bytes) {
				return false
			}
		case fieldCreatureFastMoves:
			if f.Type != protowire.TypeLengthDelimited {
				continue
			}
			ids, ok := extractVarintRun(f.Bytes)
			if !ok {
				return false
			}
			c.FastAbilities = append(c.FastAbilities, ids...)
		case fieldCreatureChargedMoves:
			if f.Type != protowire.TypeLengthDelimited {
				continue
			}
			ids, ok := extractVarintRun(f.Bytes)
			if !ok {
				return false
			}
			c.ChargedAbilities = append(c.ChargedAbilities, ids...)
		}
	}

	switch {
	case hasPrimary && hasSecondary:
		c.Types = []int{primary, secondary}
	case hasPrimary:
		// Single-typed: repeat the type so type-pair logic stays uniform.
		c.Types = []int{primary, primary}
	case hasSecondary:
		c.Types = []int{secondary, secondary}
	default:
		return false
	}

	c.BaseFastCount = len(c.FastAbilities)
	c.BaseChargedCount = len(c.ChargedAbilities)
	c.ComputeDerived()

	tables.Creatures[id] = c
	tables.CreatureIDByName[name] = id
	return true
}

func extractBaseStats(c *Creature, buf []byte) bool {
	d := protowire.NewDecoder(buf)
	for d.Remaining() > 0 {
		f, err := d.ReadField()
		if err != nil {
			return false
		}
		if f.Type != protowire.TypeVarint {
			continue
		}
		switch f.Number {
		case fieldStatStamina:
			c.Stamina = int(f.Varint)
		case fieldStatAttack:
			c.Attack = int(f.Varint)
		case fieldStatDefense:
			c.Defense = int(f.Varint)
		}
	}
	return true
}

// extractVarintRun decodes a flat run of varints with no length prefix,
// continuing until the sub-buffer is exhausted.
func extractVarintRun(buf []byte) ([]int, bool) {
	var ids []int
	d := protowire.NewDecoder(buf)
	for d.Remaining() > 0 {
		v, err := d.ReadVarint()
		if err != nil {
			return nil, false
		}
		ids = append(ids, int(v))
	}
	return ids, true
}

func extractAbility(tables *Tables, id int, name string, buf []byte) bool {
	a := &Ability{ID: id, Name: name}
	d := protowire.NewDecoder(buf)
	for d.Remaining() > 0 {
		f, err := d.ReadField()
		if err != nil {
			return false
		}
		switch f.Number {
		case fieldAbilityType:
			if f.Type == protowire.TypeVarint {
				a.Type = int(f.Varint)
			}
		case fieldAbilityPower:
			if f.Type == protowire.TypeFixed32 {
				a.Power = float64(f.Float32())
			}
		case fieldAbilityDurationMs:
			if f.Type == protowire.TypeVarint {
				a.Duration = float64(f.Varint) / 1000
			}
		case fieldAbilityEnergy:
			if f.Type == protowire.TypeVarint {
				a.Energy = int(f.Int64())
			}
		}
	}
	a.ComputeDerived()
	tables.Abilities[id] = a
	tables.AbilityIDByName[name] = id
	return true
}

func extractTypeRow(tables *Tables, name string, buf []byte) bool {
	id := -1
	row := map[int]float64{}

	d := protowire.NewDecoder(buf)
	for d.Remaining() > 0 {
		f, err := d.ReadField()
		if err != nil {
			return false
		}
		switch f.Number {
		case fieldTypeEffectiveness:
			if f.Type != protowire.TypeLengthDelimited {
				continue
			}
			// Packed float32s, effectiveness against defending types in
			// ascending id order starting at 1.
			sub := protowire.NewDecoder(f.Bytes)
			for def := 1; sub.Remaining() > 0; def++ {
				b, err := sub.ReadBytes(4)
				if err != nil {
					return false
				}
				bits := binary.LittleEndian.Uint32(b)
				row[def] = float64(math.Float32frombits(bits))
			}
		case fieldTypeID:
			if f.Type == protowire.TypeVarint {
				id = int(f.Varint)
			}
		}
	}
	if id < 0 {
		return false
	}
	tables.Chart.Add(id, name, row)
	return true
}
