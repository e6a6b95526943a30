package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"encar-copilot/api/internal/advisor"
)

type stubEngine struct {
	name  string
	reply string
	err   error
}

func (s *stubEngine) Name() string     { return s.name }
func (s *stubEngine) GetModel() string { return s.name + "-model" }
func (s *stubEngine) Generate(ctx context.Context, system, prompt string, opt advisor.GenerateOptions) (string, error) {
	return s.reply, s.err
}

func newTestHandle(reply string, err error) *Handle {
	eng := &stubEngine{name: "midm", reply: reply, err: err}
	return New(&Engines{Midm: eng, Gemini: eng, Default: "midm"})
}

func TestAdviseOK(t *testing.T) {
	h := newTestHandle(`{"summary": "무난함", "fit_score": 7, "risk_level": "low"}`, nil)

	body := `{"mode": "buy", "persona_id": "first_car_student", "vehicle": {"title": "아반떼"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/advise", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Advise(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res advisor.SingleResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Summary != "무난함" || res.RiskLevel != advisor.RiskLow {
		t.Fatalf("result: %+v", res)
	}
	if res.Pros == nil {
		t.Error("normalized lists must serialize as arrays, not null")
	}
}

func TestAdviseValidation(t *testing.T) {
	h := newTestHandle("{}", nil)
	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad mode", `{"mode": "rent", "persona_id": "x", "vehicle": {"a": 1}}`, http.StatusBadRequest},
		{"no persona", `{"mode": "buy", "vehicle": {"a": 1}}`, http.StatusBadRequest},
		{"no vehicle", `{"mode": "buy", "persona_id": "first_car_student"}`, http.StatusBadRequest},
		{"unknown engine", `{"llm_name": "gpt9", "mode": "buy", "persona_id": "first_car_student", "vehicle": {"a": 1}}`, http.StatusBadRequest},
		{"unknown persona", `{"mode": "buy", "persona_id": "ghost", "vehicle": {"a": 1}}`, http.StatusNotFound},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/advise", strings.NewReader(c.body))
		w := httptest.NewRecorder()
		h.Advise(w, req)
		if w.Code != c.want {
			t.Errorf("%s: status = %d, want %d (%s)", c.name, w.Code, c.want, w.Body.String())
		}
	}
}

func TestAdviseMethodNotAllowed(t *testing.T) {
	h := newTestHandle("{}", nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/advise", nil)
	w := httptest.NewRecorder()
	h.Advise(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAdviseEngineFailureIsBadGateway(t *testing.T) {
	h := newTestHandle("", context.DeadlineExceeded)
	body := `{"mode": "buy", "persona_id": "first_car_student", "vehicle": {"title": "x"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/advise", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Advise(w, req)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestAdviseMultiOK(t *testing.T) {
	h := newTestHandle(`{
		"summary_overall": "1번 추천", "best_index": 1,
		"ranked_candidates": [
			{"index": 1, "title": "아반떼", "fit_score": 8},
			{"index": 2, "title": "모닝", "fit_score": 5}
		]
	}`, nil)

	body := `{"mode": "buy", "persona_id": "family_second_car",
		"vehicles": [{"title": "아반떼"}, {"title": "모닝"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/advise/multi", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.AdviseMulti(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res advisor.MultiResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.BestIndex != 1 || len(res.RankedCandidates) != 2 {
		t.Fatalf("result: %+v", res)
	}
}

func TestAdviseMultiEmptyVehicles(t *testing.T) {
	h := newTestHandle("{}", nil)
	body := `{"mode": "buy", "persona_id": "first_car_student", "vehicles": []}`
	req := httptest.NewRequest(http.MethodPost, "/v1/advise/multi", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.AdviseMulti(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPersonas(t *testing.T) {
	h := newTestHandle("{}", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/personas?mode=sell", nil)
	w := httptest.NewRecorder()
	h.Personas(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list []advisor.Persona
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 4 {
		t.Fatalf("sell personas = %d, want 4", len(list))
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/personas", nil)
	w = httptest.NewRecorder()
	h.Personas(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing mode: status = %d, want 400", w.Code)
	}
}
