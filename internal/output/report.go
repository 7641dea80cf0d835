// Package output renders the ranked result pools into plain-text report
// files, plus an xlsx export of the overall ranking.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Calmarius/pogoproto/internal/gamedata"
	"github.com/Calmarius/pogoproto/internal/rank"
)

// WriteAll writes every text report into outDir and returns the written
// paths.
func WriteAll(outDir string, t *gamedata.Tables, r *rank.Rankings) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	files := []struct {
		name   string
		render func(*strings.Builder)
	}{
		{"cplist.txt", func(b *strings.Builder) { creatureList(b, t, func(c *gamedata.Creature) float64 { return c.MaxCP }) }},
		{"tankiness.txt", func(b *strings.Builder) { creatureList(b, t, func(c *gamedata.Creature) float64 { return c.Tankiness }) }},
		{"truestrength.txt", func(b *strings.Builder) { creatureList(b, t, func(c *gamedata.Creature) float64 { return c.TrueStrength }) }},
		{"moves.txt", func(b *strings.Builder) { movesTable(b, t) }},
		{"pokemonlist.txt", func(b *strings.Builder) { perCreatureMovesets(b, t, r) }},
		{"dpslist.txt", func(b *strings.Builder) { overallList(b, t, r, rank.ByDPS, true) }},
		{"truepowerlist.txt", func(b *strings.Builder) { overallList(b, t, r, rank.ByTruePower, false) }},
		{"restrictedlist.txt", func(b *strings.Builder) { overallList(b, t, r, rank.ByRestricted, false) }},
		{"bestDPSbyType.txt", func(b *strings.Builder) { byTypeList(b, t, r, rank.ByDPS) }},
		{"bestTruePowerByType.txt", func(b *strings.Builder) { byTypeList(b, t, r, rank.ByTruePower) }},
		{"bestDPSCounters.txt", func(b *strings.Builder) { counterList(b, t, r, rank.ByDPS) }},
		{"bestTruePowerCounters.txt", func(b *strings.Builder) { counterList(b, t, r, rank.ByTruePower) }},
	}

	var written []string
	for _, f := range files {
		var b strings.Builder
		f.render(&b)
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func creatureList(b *strings.Builder, t *gamedata.Tables, score func(*gamedata.Creature) float64) {
	creatures := make([]*gamedata.Creature, 0, len(t.Creatures))
	for _, id := range t.CreatureIDs() {
		creatures = append(creatures, t.Creatures[id])
	}
	sort.SliceStable(creatures, func(i, j int) bool {
		return score(creatures[i]) > score(creatures[j])
	})
	for _, c := range creatures {
		fmt.Fprintf(b, "%s: %g\n", c.Name, score(c))
	}
}

func movesTable(b *strings.Builder, t *gamedata.Tables) {
	fmt.Fprintf(b, "%-5s%-30s %-30s %-10s %-10s %-10s %-10s %-10s %-10s\n",
		"Id", "Name", "Type", "Power", "Energy", "Duration", "EPS", "DPS", "DPE")

	abilities := make([]*gamedata.Ability, 0, len(t.Abilities))
	for _, id := range t.AbilityIDs() {
		abilities = append(abilities, t.Abilities[id])
	}
	sort.SliceStable(abilities, func(i, j int) bool { return abilities[i].Name < abilities[j].Name })

	for _, a := range abilities {
		fmt.Fprintf(b, "%-5d%-30s %-30s %-10g %-10d %-10g %-10g %-10g %-10g\n",
			a.ID, a.Name, t.Chart.Name(a.Type), a.Power, a.Energy, a.Duration, a.EPS, a.DPS, a.DPE)
	}
}

func perCreatureMovesets(b *strings.Builder, t *gamedata.Tables, r *rank.Rankings) {
	byCreature := map[int][]rank.MovesetResult{}
	for _, res := range r.Overall {
		byCreature[res.CreatureID] = append(byCreature[res.CreatureID], res)
	}
	for _, id := range t.CreatureIDs() {
		c := t.Creatures[id]
		fmt.Fprintf(b, "#%d %s (Type: %s, %s) (Max CP: %g, ATK: %d, DEF: %d, STA: %d)\n",
			c.ID, c.Name, t.Chart.Name(c.Types[0]), t.Chart.Name(c.Types[1]),
			c.MaxCP, c.Attack, c.Defense, c.Stamina)
		results := rank.Sorted(byCreature[id], rank.ByDPS)
		for _, res := range results {
			fmt.Fprintf(b, "%s : %g (%g)%s\n", movesetLabel(t, res), res.DPS, res.MsDPS, legacyMark(res))
		}
		b.WriteString("\n")
	}
}

func overallList(b *strings.Builder, t *gamedata.Tables, r *rank.Rankings, metric rank.Metric, withMsDPS bool) {
	for _, res := range rank.Sorted(r.Overall, metric) {
		res := res
		if withMsDPS {
			fmt.Fprintf(b, "%s: %s : %g (%g)%s\n", creatureName(t, res), movesetLabel(t, res), metric(&res), res.MsDPS, legacyMark(res))
		} else {
			fmt.Fprintf(b, "%s: %s : %g%s\n", creatureName(t, res), movesetLabel(t, res), metric(&res), legacyMark(res))
		}
	}
}

func byTypeList(b *strings.Builder, t *gamedata.Tables, r *rank.Rankings, metric rank.Metric) {
	for _, typeID := range t.Chart.Types() {
		pool, ok := r.ByType[typeID]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "Best attackers of %s type:\n\n", t.Chart.Name(typeID))
		for _, res := range rank.Sorted(pool, metric) {
			res := res
			fmt.Fprintf(b, "%s: %s : %g%s\n", creatureName(t, res), movesetLabel(t, res), metric(&res), legacyMark(res))
		}
		b.WriteString("\n\n")
	}
}

func counterList(b *strings.Builder, t *gamedata.Tables, r *rank.Rankings, metric rank.Metric) {
	for _, t1 := range t.Chart.Types() {
		bucket, ok := r.Counters[t1]
		if !ok {
			continue
		}
		for _, t2 := range t.Chart.Types() {
			pool, ok := bucket[t2]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "Best counters of %s-%s\n", t.Chart.Name(t1), t.Chart.Name(t2))
			for _, res := range rank.Sorted(pool, metric) {
				res := res
				fmt.Fprintf(b, "%s: %s : %g%s\n", creatureName(t, res), movesetLabel(t, res), metric(&res), legacyMark(res))
			}
			b.WriteString("\n\n")
		}
	}
}

func creatureName(t *gamedata.Tables, res rank.MovesetResult) string {
	if c, ok := t.Creatures[res.CreatureID]; ok {
		return c.Name
	}
	return fmt.Sprintf("#%d", res.CreatureID)
}

func movesetLabel(t *gamedata.Tables, res rank.MovesetResult) string {
	return abilityName(t, res.FastID) + " + " + abilityName(t, res.ChargedID)
}

func abilityName(t *gamedata.Tables, id int) string {
	if a, ok := t.Abilities[id]; ok {
		return a.Name
	}
	return fmt.Sprintf("#%d", id)
}

func legacyMark(res rank.MovesetResult) string {
	if res.Legacy {
		return " [legacy]"
	}
	return ""
}
