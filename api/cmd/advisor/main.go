package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"encar-copilot/api/internal/advisor/gemini"
	"encar-copilot/api/internal/advisor/midm"
	"encar-copilot/api/internal/config"
	"encar-copilot/api/internal/handle"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	engines := &handle.Engines{
		Midm:    midm.New(cfg.MidmBaseURL, cfg.MidmModel),
		Gemini:  gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		Default: cfg.DefaultEngine,
	}
	h := handle.New(engines)

	mux.HandleFunc("/v1/personas", h.Personas)
	mux.HandleFunc("/v1/advise", h.Advise)
	mux.HandleFunc("/v1/advise/multi", h.AdviseMulti)

	addr := ":" + cfg.Port
	log.Printf("advisor listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
