package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blocksmith/internal/http/handlers"
	"blocksmith/internal/middleware"
)

// NewRouter builds the service router. Health stays outside the auth
// gate; everything that can reach the provider sits behind it.
func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.I18N(app.Config.DefaultLocale))
	if len(app.Config.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(app.Config.AllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(app.Config.AuthToken))

		r.Post("/v1/generate", app.Generate)
		r.Get("/v1/job", app.JobStatus)
		r.Get("/v1/jobs", app.JobsList)
		r.Post("/v1/job/cancel", app.JobCancel)
		r.Post("/v1/job/delete", app.JobDelete)
		r.Post("/v1/job/run", app.JobRun)
		r.Post("/v1/test-connection", app.TestConnection)

		// Form-encoded fallback for hosts where the JSON route is blocked.
		r.Post("/v1/generate-fallback", app.LegacyGenerate)
	})

	return r
}
