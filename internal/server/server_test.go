package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Calmarius/pogoproto/internal/gamedata"
	"github.com/Calmarius/pogoproto/internal/rank"
	"github.com/Calmarius/pogoproto/internal/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	chart := gamedata.NewTypeChart()
	chart.Add(1, "NORMAL", map[int]float64{1: 1.0})

	c := &gamedata.Creature{ID: 100, Name: "TESTMON", Attack: 100, Defense: 100, Stamina: 100,
		Types: []int{1, 1}, FastAbilities: []int{1}, ChargedAbilities: []int{2},
		BaseFastCount: 1, BaseChargedCount: 1}
	c.ComputeDerived()
	fast := &gamedata.Ability{ID: 1, Name: "JAB", Type: 1, Power: 10, Duration: 1, Energy: 10}
	fast.ComputeDerived()
	charged := &gamedata.Ability{ID: 2, Name: "SLAM", Type: 1, Power: 50, Duration: 2, Energy: -50}
	charged.ComputeDerived()

	tables := &gamedata.Tables{
		Creatures:        map[int]*gamedata.Creature{100: c},
		Abilities:        map[int]*gamedata.Ability{1: fast, 2: charged},
		Chart:            chart,
		CreatureIDByName: map[string]int{"TESTMON": 100},
		AbilityIDByName:  map[string]int{"JAB": 1, "SLAM": 2},
	}
	rankings := rank.Rank(tables, rank.Params{
		Battle:           sim.Params{StrikeInterval: 2.5, Duration: 100, RegenLifetime: 100},
		CombatMultiplier: gamedata.MaxLevelMultiplier,
		TargetCP:         1500,
	})
	return New(tables, rankings)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRankingsEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/rankings/dps")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []struct {
		Creature string  `json:"creature"`
		Fast     string  `json:"fast"`
		Charged  string  `json:"charged"`
		DPS      float64 `json:"dps"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	if out[0].Creature != "TESTMON" || out[0].Fast != "JAB" || out[0].Charged != "SLAM" {
		t.Fatalf("unexpected result %+v", out[0])
	}
	if out[0].DPS <= 0 {
		t.Fatalf("expected positive DPS, got %v", out[0].DPS)
	}
}

func TestRankingsUnknownMetric(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/rankings/bogus")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["status"] != float64(http.StatusNotFound) {
		t.Fatalf("unexpected error body %v", out)
	}
}

func TestTypesEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/types")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []struct {
		ID            int                `json:"id"`
		Name          string             `json:"name"`
		Effectiveness map[string]float64 `json:"effectiveness"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Name != "NORMAL" {
		t.Fatalf("unexpected types %+v", out)
	}
	if out[0].Effectiveness["1"] != 1.0 {
		t.Fatalf("unexpected effectiveness %+v", out[0].Effectiveness)
	}
}

func TestCreaturesEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/creatures")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []struct {
		Name  string  `json:"name"`
		MaxCP float64 `json:"max_cp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Name != "TESTMON" {
		t.Fatalf("unexpected creatures %+v", out)
	}
	if out[0].MaxCP <= 0 {
		t.Fatalf("expected derived max CP, got %v", out[0].MaxCP)
	}
}

func TestAbilitiesEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/abilities")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []struct {
		Name   string `json:"name"`
		Energy int    `json:"energy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 abilities, got %d", len(out))
	}
	if out[1].Name != "SLAM" || out[1].Energy != -50 {
		t.Fatalf("unexpected ability %+v", out[1])
	}
}

func TestByTypeEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/rankings/bytype/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = get(t, h, "/api/rankings/bytype/99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown type, got %d", rec.Code)
	}
}

func TestCountersPairOrder(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/counters/1/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// Reversed pairs resolve to the same pool key.
	rec = get(t, h, "/api/counters/7/3")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown pair, got %d", rec.Code)
	}
}
