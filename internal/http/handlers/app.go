package handlers

import (
	"encoding/json"
	"net/http"

	"blocksmith/internal/generate"
	"blocksmith/internal/i18n"
	"blocksmith/internal/infra"
	"blocksmith/internal/jobs"
	"blocksmith/internal/middleware"
)

// App is the handler container: configuration, the synchronous generation
// service and the async job runner.
type App struct {
	Config  *infra.Config
	Service *generate.Service
	Runner  *jobs.Runner
	Logger  infra.Logger
}

func NewApp(cfg *infra.Config, service *generate.Service, runner *jobs.Runner, logger infra.Logger) *App {
	return &App{Config: cfg, Service: service, Runner: runner, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes a structured error payload with a localized message. The
// detail string is kept alongside for operators; the localized text is
// what UIs show.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, status, map[string]any{
		"success":    false,
		"error_code": code,
		"error":      i18n.Message(locale, code, detail),
		"detail":     detail,
	})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
