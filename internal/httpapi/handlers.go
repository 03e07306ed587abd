package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Artemis21/polycalc-api/internal/game/battle"
	"github.com/Artemis21/polycalc-api/internal/game/unit"
)

// UnitInput names a unit type and its battle condition: an optional current
// health (absent means full, flag-adjusted health) and the modifier flag
// byte.
type UnitInput struct {
	Unit   string   `json:"unit"`
	Health *float64 `json:"health"`
	Flags  uint8    `json:"flags"`
}

// BattleRequest is the request body shared by POST /battle and POST /optim.
// Attacker order is the attack order.
type BattleRequest struct {
	Attackers []UnitInput `json:"attackers"`
	Defender  UnitInput   `json:"defender"`
}

// DefenderResult reports the defender's fate. Health is truncated toward
// zero on the wire.
type DefenderResult struct {
	Health    int  `json:"health"`
	Frozen    bool `json:"frozen"`
	Converted bool `json:"converted"`
}

// BattleResult is the response body of POST /battle: each attacker's
// remaining health in battle order, plus the defender's fate.
type BattleResult struct {
	Attackers []float64      `json:"attackers"`
	Defender  DefenderResult `json:"defender"`
}

// OptimiseResult is the response body of POST /optim: the winning attack
// order as indices into the request's attacker list, and the battle result
// that order produces.
type OptimiseResult struct {
	Order []int        `json:"order"`
	State BattleResult `json:"state"`
}

// buildState spawns the requested units from the catalog into a fresh
// battle state, attackers in request order.
func (s *Server) buildState(req *BattleRequest) (*battle.State, error) {
	attackers := make([]*unit.Unit, len(req.Attackers))
	for i, in := range req.Attackers {
		u, err := s.catalog.Spawn(in.Unit, in.Health, unit.Flags(in.Flags))
		if err != nil {
			return nil, err
		}
		attackers[i] = u
	}
	defender, err := s.catalog.Spawn(req.Defender.Unit, req.Defender.Health, unit.Flags(req.Defender.Flags))
	if err != nil {
		return nil, err
	}
	return &battle.State{Attackers: attackers, Defender: defender}, nil
}

// battleResult flattens a resolved state into the wire shape. Attacker
// healths stay floating point; the defender's is truncated toward zero.
func battleResult(s *battle.State) BattleResult {
	healths := make([]float64, len(s.Attackers))
	for i, a := range s.Attackers {
		healths[i] = a.Health
	}
	return BattleResult{
		Attackers: healths,
		Defender: DefenderResult{
			Health:    int(s.Defender.Health),
			Frozen:    s.Defender.Frozen,
			Converted: s.Defender.Converted,
		},
	}
}

// handleListUnits serves GET /units: every unit type in the catalog,
// including hidden ones. Clients filter.
func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Templates())
}

// handleBattle serves POST /battle: resolve the attack sequence exactly as
// given and report the outcome.
func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	var req BattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	state, err := s.buildState(&req)
	if err != nil {
		s.respondSpawnError(w, r, err)
		return
	}

	battle.ResolveSequence(state)
	writeJSON(w, http.StatusOK, battleResult(state))
}

// handleOptimise serves POST /optim: search every attack order for the best
// outcome. The search is factorial in the attacker count, so requests above
// the configured cap are rejected rather than tying up the server.
func (s *Server) handleOptimise(w http.ResponseWriter, r *http.Request) {
	var req BattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Attackers) > s.maxAttackers {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("at most %d attackers may be optimised, got %d", s.maxAttackers, len(req.Attackers)))
		return
	}

	state, err := s.buildState(&req)
	if err != nil {
		s.respondSpawnError(w, r, err)
		return
	}

	order, best, err := battle.Optimise(state)
	switch {
	case errors.Is(err, battle.ErrNoAttackers):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		requestLog(r, s.logger).Error("optimising battle", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, OptimiseResult{Order: order, State: battleResult(best)})
}

// handleHealth serves GET /healthz for liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondSpawnError maps unit lookup failures to 400 and anything else
// to 500.
func (s *Server) respondSpawnError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, unit.ErrUnitNotFound) {
		requestLog(r, s.logger).Info("request named an unknown unit", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestLog(r, s.logger).Error("building battle state", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
