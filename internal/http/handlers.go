package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"previaje/internal/core"
	plog "previaje/internal/log"
	"previaje/internal/view"
)

const (
	pageTitle    = "Argentina Previaje Dashboard"
	browserTitle = "Previaje Argentina"
	tableTitle   = "Beneficiarios del programa"
	tableIntro   = "La siguiente tabla contiene los datos de los viajeros que viajaron (en el rango total del programa). " +
		"Muestra, para cada provincia, la cantidad de personas que se beneficiaron del programa, separados por género y por rango etario."
	normalizeLabel = "Normalizar por población"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the dataset is served. It flips to 503 once
// shutdown has started.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	if !s.ready.Load() {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	checks := map[string]any{
		"months":         s.data.Dates().Len(),
		"geometry_bytes": s.data.GeometrySize(),
	}
	if s.rateLimiter != nil {
		checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

type pageData struct {
	Title          string
	BrowserTitle   string
	NormalizeLabel string
	TableTitle     string
	TableIntro     string
	Slider         view.SliderSpec
	Rows           []tableRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:          pageTitle,
		BrowserTitle:   browserTitle,
		NormalizeLabel: normalizeLabel,
		TableTitle:     tableTitle,
		TableIntro:     tableIntro,
		Slider:         s.controller.Slider(),
		Rows:           s.table,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		plog.LogError(r.Context(), "Dashboard template execution failed", err, plog.OpRender, plog.ErrorTypeInternal)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleFigures renders both charts for ?date=<index>&normalize=<bool>.
func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	st, err := parseViewState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	figs, err := s.controller.Render(r.Context(), st)
	switch {
	case errors.Is(err, core.ErrDateIndexOutOfRange):
		plog.FromContext(r.Context()).Warn("Rejected date index",
			plog.FieldDateIndex, st.DateIndex,
			plog.FieldErrorType, plog.ErrorTypeValidation)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		plog.LogError(r.Context(), "Render failed", err, plog.OpRender, plog.ErrorTypeInternal)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, figs)
}

// handleGeometry streams the simplified provinces the choropleth refers to.
func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Length", strconv.Itoa(s.data.GeometrySize()))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := s.data.WriteGeometry(w); err != nil {
		plog.FromContext(r.Context()).Log(r.Context(), slog.LevelWarn, "Geometry write interrupted", plog.FieldError, err)
	}
}

func (s *Server) handleSlider(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Slider())
}

// writeJSON encodes v with status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
