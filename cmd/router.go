package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kkkkikiki/crowdfund/internal/repository"
)

// newRouter builds the ops endpoint: liveness, storage load health and metrics
func newRouter(dataDir string, repo *repository.Repository) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		hostname, _ := os.Hostname()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"service":  "crowdfund-ledger",
			"hostname": hostname,
		})
	})

	r.Route("/health/storage", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if _, err := os.Stat(dataDir); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status":  "error",
					"message": "storage directory unavailable",
				})
				return
			}
			report := repo.Report()
			writeJSON(w, http.StatusOK, map[string]any{
				"status": loadStatus(report.Clean()),
				"load":   report,
			})
		})
		r.Get("/{table}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "table")
			fr, ok := repo.Report()[name]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]any{
					"status":  "error",
					"message": "unknown table " + name,
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"status": loadStatus(fr.Clean()),
				"table":  name,
				"load":   fr,
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func loadStatus(clean bool) string {
	if clean {
		return "ok"
	}
	return "degraded"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
