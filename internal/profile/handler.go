package profile

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/simple-kyc/simple-kyc/internal/directory"
	"github.com/simple-kyc/simple-kyc/internal/platform/httpx"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// Handler manages profile endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	pictures *PictureStore
	guard    rbac.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pictures *PictureStore, guard rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, pictures: pictures, guard: guard}
}

// MountRoutes registers profile routes. The client list is officer-only;
// single-profile routes apply resource-level rules in the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(rbac.PermViewAllProfiles))
		r.Get("/", h.list)
		r.Get("/search", h.search)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Get("/{id}/picture", h.getPicture)
		r.Put("/{id}/picture", h.putPicture)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	page, err := h.service.List(r.Context(), limit, skip)
	if err != nil {
		h.respondAccessFailure(w, "list profiles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "query parameter q is required")
		return
	}
	page, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.respondAccessFailure(w, "search profiles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")
	user, err := h.service.Get(r.Context(), identity, target)
	if err != nil {
		h.respondServiceError(w, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")

	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	user, err := h.service.Update(r.Context(), identity, target, req)
	if err != nil {
		if IsValidationError(err) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.respondServiceError(w, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) getPicture(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")
	if identity == nil || !rbac.CanAccessProfile(identity.ID, identity.Role, target) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	url, ok, err := h.pictures.Get(r.Context(), target)
	if err != nil {
		h.logger.Error("get picture", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"url": nil})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"url": url})
}

type pictureRequest struct {
	URL string `json:"url"`
}

func (h *Handler) putPicture(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")
	if identity == nil || !rbac.CanEditProfile(identity.ID, identity.Role, target) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}

	var req pictureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "url is required")
		return
	}
	if err := h.pictures.Set(r.Context(), target, req.URL); err != nil {
		h.logger.Error("store picture", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": req.URL})
}

// respondServiceError maps service failures, including the authorization
// taxonomy, to problem responses.
func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrAuthenticationRequired) || errors.Is(err, shared.ErrAuthorizationDenied) {
		httpx.RespondError(w, err)
		return
	}
	h.respondAccessFailure(w, op, err)
}

// respondAccessFailure surfaces directory failures after the access
// client has exhausted its local retry policy.
func (h *Handler) respondAccessFailure(w http.ResponseWriter, op string, err error) {
	if directory.IsNotFound(err) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error(op+" failed", slog.Any("error", err))
	if directory.IsClientError(err) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "")
		return
	}
	httpx.RespondError(w, httpx.ErrUnavailable)
}
