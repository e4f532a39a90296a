package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/condofacil/condofacil/internal/accounts"
	"github.com/condofacil/condofacil/internal/auth"
	"github.com/condofacil/condofacil/internal/authz"
	"github.com/condofacil/condofacil/internal/communications"
	"github.com/condofacil/condofacil/internal/observability"
	"github.com/condofacil/condofacil/internal/reminders"
	"github.com/condofacil/condofacil/internal/reports"
	"github.com/condofacil/condofacil/internal/reservations"
	"github.com/condofacil/condofacil/internal/settings"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
	"github.com/condofacil/condofacil/internal/votings"
	"github.com/condofacil/condofacil/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler           *auth.Handler
	AuthzHandler          *authz.Handler
	UsersHandler          *users.Handler
	ReservationsHandler   *reservations.Handler
	CommunicationsHandler *communications.Handler
	RemindersHandler      *reminders.Handler
	VotingsHandler        *votings.Handler
	AccountsHandler       *accounts.Handler
	ReportsHandler        *reports.Handler
	SettingsHandler       *settings.Handler
	JobHandler            *jobs.Handler
}

// NewRouter constructs the chi.Router with CondoFácil defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.AuthzHandler != nil {
			r.Route("/permissoes", params.AuthzHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/usuarios", params.UsersHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}

		r.Route("/condominios/{condoID}", func(r chi.Router) {
			if params.ReservationsHandler != nil {
				r.Route("/reservas", params.ReservationsHandler.MountRoutes)
			}
			if params.CommunicationsHandler != nil {
				r.Route("/comunicados", params.CommunicationsHandler.MountRoutes)
			}
			if params.RemindersHandler != nil {
				r.Route("/lembretes", params.RemindersHandler.MountRoutes)
			}
			if params.VotingsHandler != nil {
				r.Route("/votacoes", params.VotingsHandler.MountRoutes)
			}
			if params.AccountsHandler != nil {
				r.Route("/contas", params.AccountsHandler.MountRoutes)
			}
			if params.ReportsHandler != nil {
				r.Route("/relatorios", params.ReportsHandler.MountRoutes)
			}
			if params.SettingsHandler != nil {
				r.Route("/configuracoes", params.SettingsHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
