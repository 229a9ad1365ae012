package handler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confessional/internal/confession/models"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/httputil"
	"confessional/pkg/platform/paging"
	"confessional/pkg/requestcontext"
)

// Service is the confession surface exposed over HTTP.
type Service interface {
	Create(ctx context.Context, authorID id.PrincipalID, cmd models.CreateCommand) (*models.View, error)
	Get(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID) (*models.View, error)
	Feed(ctx context.Context, viewerID id.PrincipalID, req paging.Request) (paging.Page[models.View], error)
	ToggleLike(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID) (bool, error)
	Comment(ctx context.Context, viewerID id.PrincipalID, confessionID id.ConfessionID, text string) (*models.CommentView, error)
}

// Handler serves confessions and reactions. Every route sits behind RequireAuth.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterReads mounts routes in the read rate limit class.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/confessions", h.HandleFeed)
	r.Get("/confessions/{id}", h.HandleGet)
}

// RegisterWrites mounts routes in the write rate limit class.
func (h *Handler) RegisterWrites(r chi.Router) {
	r.Post("/confessions", h.HandleCreate)
	r.Post("/confessions/{id}/like", h.HandleLike)
	r.Post("/confessions/{id}/comments", h.HandleComment)
}

type createRequest struct {
	Text string `json:"text"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

type likeResponse struct {
	Liked bool `json:"liked"`
}

// HandleCreate accepts either JSON {"text": "..."} or a multipart form with a
// text field and an optional image part.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmd, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, requestcontext.PrincipalID(ctx), cmd)
	if err != nil {
		h.logger.WarnContext(ctx, "create confession failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) decodeCreate(w http.ResponseWriter, r *http.Request) (models.CreateCommand, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		req, ok := httputil.DecodeJSON[createRequest](w, r, h.logger)
		if !ok {
			return models.CreateCommand{}, false
		}
		return models.CreateCommand{Text: req.Text}, true
	}

	if err := httputil.ParseMultipart(r); err != nil {
		httputil.WriteError(w, err)
		return models.CreateCommand{}, false
	}
	cmd := models.CreateCommand{Text: r.FormValue("text")}
	upload, err := httputil.FormFile(r, "image")
	if err != nil {
		httputil.WriteError(w, err)
		return models.CreateCommand{}, false
	}
	if upload != nil {
		cmd.Image = upload.Data
		cmd.ImageContentType = upload.ContentType
	}
	return cmd, true
}

// HandleFeed implements GET /confessions?cursor=&limit=.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := paging.FromQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, err := h.service.Feed(ctx, requestcontext.PrincipalID(ctx), req)
	if err != nil {
		h.logger.WarnContext(ctx, "feed failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	confessionID, ok := confessionParam(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(ctx, requestcontext.PrincipalID(ctx), confessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleLike toggles the caller's like and reports the new state.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	confessionID, ok := confessionParam(w, r)
	if !ok {
		return
	}

	liked, err := h.service.ToggleLike(ctx, requestcontext.PrincipalID(ctx), confessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "toggle like failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, likeResponse{Liked: liked})
}

func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	confessionID, ok := confessionParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[commentRequest](w, r, h.logger)
	if !ok {
		return
	}

	comment, err := h.service.Comment(ctx, requestcontext.PrincipalID(ctx), confessionID, req.Text)
	if err != nil {
		h.logger.WarnContext(ctx, "comment failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comment)
}

func confessionParam(w http.ResponseWriter, r *http.Request) (id.ConfessionID, bool) {
	confessionID, err := id.ParseConfessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ConfessionID{}, false
	}
	return confessionID, true
}
