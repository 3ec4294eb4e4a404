package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simple-kyc/simple-kyc/internal/platform/httpx"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// Handler exposes login and logout endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, csrf: csrf}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Identity  *rbac.Identity `json:"identity"`
	Landing   string         `json:"landing"`
	CSRFToken string         `json:"csrfToken"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	identity, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Invalid Credentials", "identifier or password is not valid")
			return
		}
		h.logger.Error("login lookup failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Unable To Complete Request", "directory lookup failed, try again later")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.Login(*identity)

	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("csrf token", slog.Any("error", err))
	}

	h.logger.Info("user logged in",
		slog.String("user", identity.ID),
		slog.String("role", string(identity.Role)))

	httpx.JSON(w, http.StatusOK, loginResponse{
		Identity:  identity,
		Landing:   LandingPath(identity),
		CSRFToken: token,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.Logout()
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// me returns the current identity, letting the front end restore state
// after a reload.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Authentication Required", "")
		return
	}
	httpx.JSON(w, http.StatusOK, identity)
}
