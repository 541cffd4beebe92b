package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ukombozini/backoffice/internal/boosters"
	"github.com/ukombozini/backoffice/internal/dashboard"
	"github.com/ukombozini/backoffice/internal/groups"
	"github.com/ukombozini/backoffice/internal/meetings"
	"github.com/ukombozini/backoffice/internal/members"
	"github.com/ukombozini/backoffice/internal/observability"
	"github.com/ukombozini/backoffice/internal/officers"
	"github.com/ukombozini/backoffice/internal/products"
	"github.com/ukombozini/backoffice/internal/reports"
	"github.com/ukombozini/backoffice/internal/tablebanking"
	"github.com/ukombozini/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	OfficersHandler     *officers.Handler
	MembersHandler      *members.Handler
	GroupsHandler       *groups.Handler
	TablebankingHandler *tablebanking.Handler
	BoostersHandler     *boosters.Handler
	ProductsHandler     *products.Handler
	MeetingsHandler     *meetings.Handler
	ReportsHandler      *reports.Handler
	DashboardHandler    *dashboard.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Ukombozini defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.OfficersHandler != nil {
		r.Route("/officers", params.OfficersHandler.MountRoutes)
	}
	if params.MembersHandler != nil {
		r.Route("/members", params.MembersHandler.MountRoutes)
	}
	if params.GroupsHandler != nil {
		r.Route("/groups", params.GroupsHandler.MountRoutes)
	}
	if params.TablebankingHandler != nil {
		r.Route("/tablebanking", params.TablebankingHandler.MountRoutes)
	}
	if params.BoostersHandler != nil {
		r.Route("/boosters", params.BoostersHandler.MountRoutes)
	}
	if params.ProductsHandler != nil {
		r.Route("/products", params.ProductsHandler.MountRoutes)
	}
	if params.MeetingsHandler != nil {
		r.Route("/meetings", params.MeetingsHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
