// Package server exposes the computed rankings over a read-only JSON API.
// Everything served is precomputed and immutable, so handlers take no locks.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Calmarius/pogoproto/internal/gamedata"
	"github.com/Calmarius/pogoproto/internal/rank"
)

// Server holds the record tables and result pools of one completed run.
type Server struct {
	tables   *gamedata.Tables
	rankings *rank.Rankings
}

func New(t *gamedata.Tables, r *rank.Rankings) *Server {
	return &Server{tables: t, rankings: r}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/types", s.handleTypes).Methods(http.MethodGet)
	r.HandleFunc("/api/creatures", s.handleCreatures).Methods(http.MethodGet)
	r.HandleFunc("/api/abilities", s.handleAbilities).Methods(http.MethodGet)
	r.HandleFunc("/api/rankings/{metric}", s.handleRankings).Methods(http.MethodGet)
	r.HandleFunc("/api/rankings/bytype/{type:[0-9]+}", s.handleByType).Methods(http.MethodGet)
	r.HandleFunc("/api/counters/{first:[0-9]+}/{second:[0-9]+}", s.handleCounters).Methods(http.MethodGet)
	return r
}

type typeInfo struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Effectiveness map[string]float64 `json:"effectiveness"`
}

func (s *Server) handleTypes(w http.ResponseWriter, _ *http.Request) {
	ids := s.tables.Chart.Types()
	out := make([]typeInfo, 0, len(ids))
	for _, id := range ids {
		ti := typeInfo{ID: id, Name: s.tables.Chart.Name(id), Effectiveness: map[string]float64{}}
		for _, def := range ids {
			if e, ok := s.tables.Chart.Effectiveness(id, def); ok {
				ti.Effectiveness[strconv.Itoa(def)] = e
			}
		}
		out = append(out, ti)
	}
	writeJSON(w, out)
}

type creatureInfo struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Attack       int     `json:"attack"`
	Defense      int     `json:"defense"`
	Stamina      int     `json:"stamina"`
	Types        []int   `json:"types"`
	Fast         []int   `json:"fast_abilities"`
	Charged      []int   `json:"charged_abilities"`
	MaxCP        float64 `json:"max_cp"`
	Tankiness    float64 `json:"tankiness"`
	TrueStrength float64 `json:"true_strength"`
}

func (s *Server) handleCreatures(w http.ResponseWriter, _ *http.Request) {
	out := make([]creatureInfo, 0, len(s.tables.Creatures))
	for _, id := range s.tables.CreatureIDs() {
		c := s.tables.Creatures[id]
		out = append(out, creatureInfo{
			ID: c.ID, Name: c.Name,
			Attack: c.Attack, Defense: c.Defense, Stamina: c.Stamina,
			Types: c.Types, Fast: c.FastAbilities, Charged: c.ChargedAbilities,
			MaxCP: c.MaxCP, Tankiness: c.Tankiness, TrueStrength: c.TrueStrength,
		})
	}
	writeJSON(w, out)
}

type abilityInfo struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Type     int     `json:"type"`
	Power    float64 `json:"power"`
	Duration float64 `json:"duration_sec"`
	Energy   int     `json:"energy"`
}

func (s *Server) handleAbilities(w http.ResponseWriter, _ *http.Request) {
	out := make([]abilityInfo, 0, len(s.tables.Abilities))
	for _, id := range s.tables.AbilityIDs() {
		a := s.tables.Abilities[id]
		out = append(out, abilityInfo{
			ID: a.ID, Name: a.Name, Type: a.Type,
			Power: a.Power, Duration: a.Duration, Energy: a.Energy,
		})
	}
	writeJSON(w, out)
}

type resultInfo struct {
	Creature   string  `json:"creature"`
	Fast       string  `json:"fast"`
	Charged    string  `json:"charged"`
	MsDPS      float64 `json:"ms_dps"`
	DPS        float64 `json:"dps"`
	TruePower  float64 `json:"true_power"`
	Restricted float64 `json:"restricted"`
	Legacy     bool    `json:"legacy,omitempty"`
}

func metricByName(name string) (rank.Metric, bool) {
	switch name {
	case "dps":
		return rank.ByDPS, true
	case "msdps":
		return rank.ByMsDPS, true
	case "truepower":
		return rank.ByTruePower, true
	case "restricted":
		return rank.ByRestricted, true
	}
	return nil, false
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	metric, ok := metricByName(mux.Vars(r)["metric"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown metric (supported: dps, msdps, truepower, restricted)")
		return
	}
	writeJSON(w, s.results(rank.Sorted(s.rankings.Overall, metric)))
}

func (s *Server) handleByType(w http.ResponseWriter, r *http.Request) {
	typeID, _ := strconv.Atoi(mux.Vars(r)["type"])
	pool, ok := s.rankings.ByType[typeID]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown type id")
		return
	}
	writeJSON(w, s.results(rank.Sorted(pool, rank.ByDPS)))
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	first, _ := strconv.Atoi(vars["first"])
	second, _ := strconv.Atoi(vars["second"])
	// Counter pools are keyed with first <= second.
	if first > second {
		first, second = second, first
	}
	pool, ok := s.rankings.Counters[first][second]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown type pair")
		return
	}
	writeJSON(w, s.results(rank.Sorted(pool, rank.ByDPS)))
}

func (s *Server) results(rs []rank.MovesetResult) []resultInfo {
	out := make([]resultInfo, 0, len(rs))
	for _, res := range rs {
		ri := resultInfo{
			MsDPS:      res.MsDPS,
			DPS:        res.DPS,
			TruePower:  res.TruePower,
			Restricted: res.Restricted,
			Legacy:     res.Legacy,
		}
		if c, ok := s.tables.Creatures[res.CreatureID]; ok {
			ri.Creature = c.Name
		}
		if a, ok := s.tables.Abilities[res.FastID]; ok {
			ri.Fast = a.Name
		}
		if a, ok := s.tables.Abilities[res.ChargedID]; ok {
			ri.Charged = a.Name
		}
		out = append(out, ri)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}
