package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confessional/internal/verification/handler/mocks"
	"confessional/internal/verification/models"
	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/httputil"
	"confessional/pkg/platform/middleware/request"
	"confessional/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	actor   id.PrincipalID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.actor = id.NewPrincipalID()

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Use(request.BodyLimit(1024))
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(requestcontext.WithPrincipalID(req.Context(), s.actor)))
			})
		})
		h.RegisterAdmin(r)
	})
	s.router = r
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) registerRequest(email, password string, evidence []byte, contentType string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("email", email))
	s.Require().NoError(mw.WriteField("password", password))
	if evidence != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="evidence"; filename="id.png"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		s.Require().NoError(err)
		_, err = part.Write(evidence)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func (s *HandlerSuite) TestRegister() {
	s.Run("creates a pending principal from the multipart form", func() {
		principalID := id.NewPrincipalID()
		s.service.EXPECT().Register(gomock.Any(), models.RegisterCommand{
			Email:       "anon@example.com",
			Password:    "correct horse",
			Evidence:    []byte("png-bytes"),
			ContentType: "image/png",
		}).Return(&models.Principal{ID: principalID, Status: models.StatusPending}, nil)

		w := s.do(s.registerRequest("anon@example.com", "correct horse", []byte("png-bytes"), "image/png"))

		s.Equal(http.StatusCreated, w.Code)
		var resp registerResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(principalID.String(), resp.PrincipalID)
		s.Equal(models.StatusPending, resp.Status)
	})

	s.Run("missing evidence is a validation error", func() {
		w := s.do(s.registerRequest("anon@example.com", "correct horse", nil, ""))

		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeValidation), errorCode(s.T(), w))
	})

	s.Run("body over the limit is 413", func() {
		w := s.do(s.registerRequest("anon@example.com", "correct horse", bytes.Repeat([]byte("x"), 4096), "image/png"))

		s.Equal(http.StatusRequestEntityTooLarge, w.Code)
		s.Equal(string(dErrors.CodeSizeExceeded), errorCode(s.T(), w))
	})

	s.Run("duplicate credential is 409", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeDuplicateCredential, "credential is already registered"))

		w := s.do(s.registerRequest("anon@example.com", "correct horse", []byte("png"), "image/png"))

		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("unsupported evidence type is 415", func() {
		s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnsupportedType, "evidence must be an image"))

		w := s.do(s.registerRequest("anon@example.com", "correct horse", []byte("%PDF"), "application/pdf"))

		s.Equal(http.StatusUnsupportedMediaType, w.Code)
	})
}

func (s *HandlerSuite) TestAdjudicate() {
	target := id.NewPrincipalID()

	s.Run("approve passes the authenticated actor", func() {
		s.service.EXPECT().Approve(gomock.Any(), s.actor, target).
			Return(&models.Principal{ID: target, Status: models.StatusApproved}, nil)

		w := s.do(httptest.NewRequest(http.MethodPost, "/admin/principals/"+target.String()+"/approve", nil))

		s.Equal(http.StatusOK, w.Code)
		var resp principalResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(models.StatusApproved, resp.Status)
	})

	s.Run("reject of a decided principal is 409", func() {
		s.service.EXPECT().Reject(gomock.Any(), s.actor, target).
			Return(nil, dErrors.New(dErrors.CodeInvalidTransition, "principal is not pending"))

		w := s.do(httptest.NewRequest(http.MethodPost, "/admin/principals/"+target.String()+"/reject", nil))

		s.Equal(http.StatusConflict, w.Code)
		s.Equal(string(dErrors.CodeInvalidTransition), errorCode(s.T(), w))
	})

	s.Run("non-admin actor is 401", func() {
		s.service.EXPECT().Approve(gomock.Any(), s.actor, target).
			Return(nil, dErrors.New(dErrors.CodePermissionDenied, "permission denied"))

		w := s.do(httptest.NewRequest(http.MethodPost, "/admin/principals/"+target.String()+"/approve", nil))

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("malformed id never reaches the service", func() {
		w := s.do(httptest.NewRequest(http.MethodPost, "/admin/principals/not-a-uuid/approve", nil))

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestBan() {
	target := id.NewPrincipalID()
	path := "/admin/principals/" + target.String() + "/ban"

	s.Run("sets the flag", func() {
		s.service.EXPECT().SetBanned(gomock.Any(), s.actor, target, true).Return(nil)

		w := s.do(httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"banned":true}`)))

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("clears the flag", func() {
		s.service.EXPECT().SetBanned(gomock.Any(), s.actor, target, false).Return(nil)

		w := s.do(httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"banned":false}`)))

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("missing banned field is a validation error", func() {
		w := s.do(httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))

		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeValidation), errorCode(s.T(), w))
	})

	s.Run("banning a pending principal is 409", func() {
		s.service.EXPECT().SetBanned(gomock.Any(), s.actor, target, true).
			Return(dErrors.New(dErrors.CodeInvalidTransition, "only approved principals can be banned"))

		w := s.do(httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"banned":true}`)))

		s.Equal(http.StatusConflict, w.Code)
	})
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
