package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"confessional/internal/moderation/models"
	vmodels "confessional/internal/verification/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/httputil"
	"confessional/pkg/platform/paging"
	"confessional/pkg/requestcontext"
)

// Service is the moderation surface exposed over HTTP.
type Service interface {
	Report(ctx context.Context, contentID id.ConfessionID, reporterID id.PrincipalID, reason string) (*models.Report, error)
	RemoveContent(ctx context.Context, contentID id.ConfessionID, actorID id.PrincipalID) error
	BanAuthor(ctx context.Context, contentID id.ConfessionID, actorID id.PrincipalID) error
	ListReports(ctx context.Context, actorID id.PrincipalID, req paging.Request) (paging.Page[models.ReportView], error)
	ListPendingPrincipals(ctx context.Context, actorID id.PrincipalID, status *vmodels.Status) ([]models.PrincipalSummary, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the reporting route for authorized principals.
func (h *Handler) Register(r chi.Router) {
	r.Post("/confessions/{id}/reports", h.HandleReport)
}

// RegisterAdmin mounts every admin route on one router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	h.RegisterAdminReads(r)
	h.RegisterAdminWrites(r)
}

// RegisterAdminReads mounts the admin listings.
func (h *Handler) RegisterAdminReads(r chi.Router) {
	r.Get("/admin/principals", h.HandleListPrincipals)
	r.Get("/admin/reports", h.HandleListReports)
}

// RegisterAdminWrites mounts the admin actions.
func (h *Handler) RegisterAdminWrites(r chi.Router) {
	r.Post("/admin/confessions/{id}/remove", h.HandleRemove)
	r.Post("/admin/confessions/{id}/ban-author", h.HandleBanAuthor)
}

type reportRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type reportResponse struct {
	ReportID string `json:"report_id"`
}

type principalsResponse struct {
	Principals []models.PrincipalSummary `json:"principals"`
}

// HandleReport files a report. The response never echoes the reporter.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contentID, ok := contentParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[reportRequest](w, r, h.logger)
	if !ok {
		return
	}

	report, err := h.service.Report(ctx, contentID, requestcontext.PrincipalID(ctx), req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "report failed",
			"error", err,
			"confession_id", contentID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, reportResponse{ReportID: report.ID.String()})
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.RemoveContent, "remove content")
}

func (h *Handler) HandleBanAuthor(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.BanAuthor, "ban author")
}

func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.ConfessionID, id.PrincipalID) error, op string) {
	ctx := r.Context()
	contentID, ok := contentParam(w, r)
	if !ok {
		return
	}

	if err := fn(ctx, contentID, requestcontext.PrincipalID(ctx)); err != nil {
		h.logger.WarnContext(ctx, op+" failed",
			"error", err,
			"confession_id", contentID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListReports implements GET /admin/reports?cursor=&limit=.
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := paging.FromQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.ListReports(ctx, requestcontext.PrincipalID(ctx), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandleListPrincipals implements GET /admin/principals?status=. No status
// lists everyone.
func (h *Handler) HandleListPrincipals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var status *vmodels.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := vmodels.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = &parsed
	}

	principals, err := h.service.ListPendingPrincipals(ctx, requestcontext.PrincipalID(ctx), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if principals == nil {
		principals = []models.PrincipalSummary{}
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, principalsResponse{Principals: principals})
}

func contentParam(w http.ResponseWriter, r *http.Request) (id.ConfessionID, bool) {
	contentID, err := id.ParseConfessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ConfessionID{}, false
	}
	return contentID, true
}
