package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"encar-copilot/api/internal/advisor"
)

// --- ADVISE (단일 매물) --------------------------------------------------

type adviseReq struct {
	LLMName string `json:"llm_name"`

	Mode      string                `json:"mode"` // buy | sell
	PersonaID string                `json:"persona_id"`
	UserNote  string                `json:"user_note"`
	Vehicle   advisor.VehicleRecord `json:"vehicle"`
}

func (h *Handle) Advise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req adviseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	mode, ok := parseMode(req.Mode)
	if !ok {
		http.Error(w, "mode must be buy or sell", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PersonaID) == "" {
		http.Error(w, "persona_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Vehicle) == 0 {
		http.Error(w, "vehicle is required", http.StatusBadRequest)
		return
	}

	eng, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		http.Error(w, "advise error: "+err.Error(), http.StatusBadRequest)
		return
	}

	// 로컬 추론까지 감안한 상한. 코어 자체는 데드라인을 잡지 않는다.
	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	out, err := advisor.New(eng).AdviseSingle(ctx, req.Vehicle, req.PersonaID, mode, req.UserNote)
	if err != nil {
		writeAdviseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --- ADVISE MULTI (여러 매물 비교) ---------------------------------------

type adviseMultiReq struct {
	LLMName string `json:"llm_name"`

	Mode      string                  `json:"mode"`
	PersonaID string                  `json:"persona_id"`
	UserNote  string                  `json:"user_note"`
	Vehicles  []advisor.VehicleRecord `json:"vehicles"`
}

func (h *Handle) AdviseMulti(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req adviseMultiReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	mode, ok := parseMode(req.Mode)
	if !ok {
		http.Error(w, "mode must be buy or sell", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PersonaID) == "" {
		http.Error(w, "persona_id is required", http.StatusBadRequest)
		return
	}

	eng, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		http.Error(w, "advise error: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	out, err := advisor.New(eng).AdviseMulti(ctx, req.Vehicles, req.PersonaID, mode, req.UserNote)
	if err != nil {
		writeAdviseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --- PERSONAS ------------------------------------------------------------

func (h *Handle) Personas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	mode, ok := parseMode(r.URL.Query().Get("mode"))
	if !ok {
		http.Error(w, "mode must be buy or sell", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, advisor.Personas(mode))
}

// --- helpers -------------------------------------------------------------

func parseMode(s string) (advisor.Mode, bool) {
	switch advisor.Mode(strings.ToLower(strings.TrimSpace(s))) {
	case advisor.ModeBuy:
		return advisor.ModeBuy, true
	case advisor.ModeSell:
		return advisor.ModeSell, true
	}
	return "", false
}

// writeAdviseError — 코어 에러를 HTTP 코드로 변환.
// 페르소나 미존재/빈 목록은 요청 문제, 나머지(게이트웨이)는 502.
func writeAdviseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, advisor.ErrPersonaNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, advisor.ErrNoVehicles):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "advise error: "+err.Error(), http.StatusBadGateway)
	}
}
