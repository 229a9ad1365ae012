package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/httputil"
	"confessional/pkg/requestcontext"
)

// Service is the verification surface exposed over HTTP.
type Service interface {
	Register(ctx context.Context, cmd models.RegisterCommand) (*models.Principal, error)
	Approve(ctx context.Context, actorID, principalID id.PrincipalID) (*models.Principal, error)
	Reject(ctx context.Context, actorID, principalID id.PrincipalID) (*models.Principal, error)
	SetBanned(ctx context.Context, actorID, principalID id.PrincipalID, banned bool) error
}

// Handler serves registration and admin adjudication.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts routes that need no bearer token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
}

// RegisterAdmin mounts routes behind RequireAuth. The service enforces the
// admin role itself.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/principals/{id}/approve", h.HandleApprove)
	r.Post("/admin/principals/{id}/reject", h.HandleReject)
	r.Post("/admin/principals/{id}/ban", h.HandleBan)
}

type registerResponse struct {
	PrincipalID string        `json:"principal_id"`
	Status      models.Status `json:"status"`
}

type principalResponse struct {
	PrincipalID string        `json:"principal_id"`
	Status      models.Status `json:"status"`
	Banned      bool          `json:"banned"`
}

type banRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

// HandleRegister accepts multipart fields email, password and the evidence file.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := httputil.ParseMultipart(r); err != nil {
		h.logger.WarnContext(ctx, "invalid registration form",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	upload, err := httputil.FormFile(r, "evidence")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if upload == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "evidence is required"))
		return
	}

	principal, err := h.service.Register(ctx, models.RegisterCommand{
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		Evidence:    upload.Data,
		ContentType: upload.ContentType,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		PrincipalID: principal.ID.String(),
		Status:      principal.Status,
	})
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.adjudicate(w, r, h.service.Approve, "approve")
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.adjudicate(w, r, h.service.Reject, "reject")
}

type adjudicateFunc func(ctx context.Context, actorID, principalID id.PrincipalID) (*models.Principal, error)

func (h *Handler) adjudicate(w http.ResponseWriter, r *http.Request, fn adjudicateFunc, op string) {
	ctx := r.Context()
	principalID, err := id.ParsePrincipalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	principal, err := fn(ctx, requestcontext.PrincipalID(ctx), principalID)
	if err != nil {
		h.logger.WarnContext(ctx, op+" failed",
			"error", err,
			"principal_id", principalID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, principalResponse{
		PrincipalID: principal.ID.String(),
		Status:      principal.Status,
		Banned:      principal.Banned,
	})
}

// HandleBan sets or clears the ban flag: {"banned": true}.
func (h *Handler) HandleBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principalID, err := id.ParsePrincipalID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[banRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.SetBanned(ctx, requestcontext.PrincipalID(ctx), principalID, *req.Banned); err != nil {
		h.logger.WarnContext(ctx, "ban update failed",
			"error", err,
			"principal_id", principalID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
