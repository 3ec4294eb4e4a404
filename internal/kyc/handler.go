package kyc

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/go-chi/chi/v5"

	"github.com/simple-kyc/simple-kyc/internal/platform/httpx"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// Handler manages disclosure and review endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Guard
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers kyc routes. The review dashboard group is gated
// on access:review-page; disclosure routes apply per-resource rules in
// the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Post("/submissions/{id}", h.submitDisclosure)
		r.Get("/submissions/{id}", h.getSubmission)
		r.Get("/reviews/{id}", h.getReview)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(rbac.PermAccessReviewPage))
		r.Get("/reviews", h.listReviews)
		r.Post("/reviews/{id}", h.submitReview)
	})
}

type disclosureRequest struct {
	Incomes         []LineItem `json:"incomes"`
	Assets          []LineItem `json:"assets"`
	Liabilities     []LineItem `json:"liabilities"`
	SourcesOfWealth []LineItem `json:"sourcesOfWealth"`
	Experience      string     `json:"experience"`
	RiskTolerance   string     `json:"riskTolerance"`
}

type disclosureResponse struct {
	Submission *Submission `json:"submission"`
	NetWorth   float64     `json:"netWorth"`
}

func (h *Handler) submitDisclosure(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")

	var req disclosureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	sub := Submission{
		UserID:          target,
		Incomes:         req.Incomes,
		Assets:          req.Assets,
		Liabilities:     req.Liabilities,
		SourcesOfWealth: req.SourcesOfWealth,
		Experience:      req.Experience,
		RiskTolerance:   req.RiskTolerance,
	}
	saved, err := h.service.SubmitDisclosure(r.Context(), identity, sub)
	if err != nil {
		h.respondError(w, "submit disclosure", err)
		return
	}
	httpx.JSON(w, http.StatusOK, disclosureResponse{Submission: saved, NetWorth: saved.NetWorth()})
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")
	sub, err := h.service.GetSubmission(r.Context(), identity, target)
	if err != nil {
		h.respondError(w, "get submission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, disclosureResponse{Submission: sub, NetWorth: sub.NetWorth()})
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")
	review, err := h.service.GetReview(r.Context(), identity, target)
	if err != nil {
		h.respondError(w, "get review", err)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	reviews, err := h.service.ListReviews(r.Context(), identity)
	if err != nil {
		h.respondError(w, "list reviews", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reviews": reviews, "total": len(reviews)})
}

type reviewRequest struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	target := chi.URLParam(r, "id")

	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	review, err := h.service.SubmitReview(r.Context(), identity, target, req.Status, req.Notes)
	if err != nil {
		h.respondError(w, "submit review", err)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, ErrUnknownStatus), errors.Is(err, ErrInvalidDisclosure), errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrAuthenticationRequired),
		errors.Is(err, shared.ErrAuthorizationDenied),
		errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, err)
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
