package handle

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"encar-copilot/api/internal/advisor"
)

// Engines — 서비스가 아는 게이트웨이 구현들. 요청의 llm_name으로 고른다.
type Engines struct {
	Midm   advisor.Engine
	Gemini advisor.Engine

	// llm_name이 비었을 때 쓰는 엔진 이름
	Default string
}

func (e *Engines) GetEngine(name string) (advisor.Engine, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = strings.ToLower(strings.TrimSpace(e.Default))
	}
	switch n {
	case "midm", "":
		return e.Midm, nil
	case "gemini":
		return e.Gemini, nil
	default:
		return nil, fmt.Errorf("unknown llm_name: %q", name)
	}
}

type Handle struct {
	engs *Engines
}

func New(engs *Engines) *Handle {
	return &Handle{
		engs: engs,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
