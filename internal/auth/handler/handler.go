package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confessional/internal/auth/service"
	"confessional/pkg/platform/httputil"
	"confessional/pkg/requestcontext"
	s "confessional/pkg/string"
)

// Service defines the login operation.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// Handler exchanges credentials for a bearer token.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register mounts the login route. The router applies the auth rate limit class.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (r *loginRequest) Sanitize() {
	r.Email = s.StripControl(r.Email)
}

// HandleLogin implements POST /auth/login.
//
// Input: { "email": "anon@example.com", "password": "..." }
// Output: { "access_token": "...", "token_type": "Bearer", "expires_at": "..." }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		// the service logs the reason; the client only learns the code
		h.logger.InfoContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, res)
}
