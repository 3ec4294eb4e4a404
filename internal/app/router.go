package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simple-kyc/simple-kyc/internal/auth"
	"github.com/simple-kyc/simple-kyc/internal/kyc"
	"github.com/simple-kyc/simple-kyc/internal/observability"
	"github.com/simple-kyc/simple-kyc/internal/platform/httpx"
	"github.com/simple-kyc/simple-kyc/internal/profile"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	ProfileHandler *profile.Handler
	KYCHandler     *kyc.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
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

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/profiles", params.ProfileHandler.MountRoutes)
	r.Route("/kyc", params.KYCHandler.MountRoutes)

	return r
}
