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
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confessional/internal/confession/handler/mocks"
	"confessional/internal/confession/models"
	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/paging"
	"confessional/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type ConfessionHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	viewer  id.PrincipalID
}

func TestConfessionHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConfessionHandlerSuite))
}

func (s *ConfessionHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	s.viewer = id.NewPrincipalID()

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithPrincipalID(req.Context(), s.viewer)))
		})
	})
	h.RegisterReads(r)
	h.RegisterWrites(r)
	s.router = r
}

func (s *ConfessionHandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ConfessionHandlerSuite) TestCreate() {
	s.Run("json body", func() {
		s.service.EXPECT().Create(gomock.Any(), s.viewer, models.CreateCommand{Text: "I never returned the library book"}).
			Return(&models.View{ID: id.NewConfessionID().String(), Text: "I never returned the library book"}, nil)

		w := s.do(httptest.NewRequest(http.MethodPost, "/confessions",
			strings.NewReader(`{"text":"I never returned the library book"}`)))

		s.Equal(http.StatusCreated, w.Code)
		s.NotContains(w.Body.String(), s.viewer.String())
	})

	s.Run("multipart with image", func() {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		s.Require().NoError(mw.WriteField("text", "I ate the last slice of cake"))
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="cake.jpg"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(header)
		s.Require().NoError(err)
		_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
		s.Require().NoError(err)
		s.Require().NoError(mw.Close())

		s.service.EXPECT().Create(gomock.Any(), s.viewer, models.CreateCommand{
			Text:             "I ate the last slice of cake",
			Image:            []byte{0xFF, 0xD8, 0xFF},
			ImageContentType: "image/jpeg",
		}).Return(&models.View{Text: "I ate the last slice of cake", ImageURL: "https://cdn.test/media/x"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/confessions", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := s.do(req)

		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("unapproved author is 401", func() {
		s.service.EXPECT().Create(gomock.Any(), s.viewer, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodePermissionDenied, "permission denied"))

		w := s.do(httptest.NewRequest(http.MethodPost, "/confessions", strings.NewReader(`{"text":"a pending author"}`)))

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *ConfessionHandlerSuite) TestFeed() {
	s.Run("passes cursor and limit through", func() {
		s.service.EXPECT().Feed(gomock.Any(), s.viewer, paging.Request{Cursor: "abc", Limit: 5}).
			Return(paging.Page[models.View]{Items: []models.View{{Text: "one"}}, NextCursor: "def"}, nil)

		w := s.do(httptest.NewRequest(http.MethodGet, "/confessions?cursor=abc&limit=5", nil))

		s.Equal(http.StatusOK, w.Code)
		var page paging.Page[models.View]
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
		s.Len(page.Items, 1)
		s.Equal("def", page.NextCursor)
	})

	s.Run("bad limit is 400", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/confessions?limit=lots", nil))

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *ConfessionHandlerSuite) TestGet() {
	confessionID := id.NewConfessionID()

	s.Run("removed content is 404", func() {
		s.service.EXPECT().Get(gomock.Any(), s.viewer, confessionID).Return(nil, models.ErrNotFound())

		w := s.do(httptest.NewRequest(http.MethodGet, "/confessions/"+confessionID.String(), nil))

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("view carries counts", func() {
		s.service.EXPECT().Get(gomock.Any(), s.viewer, confessionID).
			Return(&models.View{ID: confessionID.String(), Likes: 2, Comments: 1, Liked: true}, nil)

		w := s.do(httptest.NewRequest(http.MethodGet, "/confessions/"+confessionID.String(), nil))

		s.Equal(http.StatusOK, w.Code)
		var view models.View
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
		s.Equal(2, view.Likes)
		s.True(view.Liked)
	})
}

func (s *ConfessionHandlerSuite) TestReactions() {
	confessionID := id.NewConfessionID()

	s.Run("like reports the new state", func() {
		s.service.EXPECT().ToggleLike(gomock.Any(), s.viewer, confessionID).Return(true, nil)

		w := s.do(httptest.NewRequest(http.MethodPost, "/confessions/"+confessionID.String()+"/like", nil))

		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"liked":true}`, w.Body.String())
	})

	s.Run("banned viewer cannot like", func() {
		s.service.EXPECT().ToggleLike(gomock.Any(), s.viewer, confessionID).
			Return(false, dErrors.New(dErrors.CodePermissionDenied, "permission denied"))

		w := s.do(httptest.NewRequest(http.MethodPost, "/confessions/"+confessionID.String()+"/like", nil))

		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("comment is created", func() {
		s.service.EXPECT().Comment(gomock.Any(), s.viewer, confessionID, "same here").
			Return(&models.CommentView{ID: id.NewCommentID().String(), Text: "same here"}, nil)

		w := s.do(httptest.NewRequest(http.MethodPost, "/confessions/"+confessionID.String()+"/comments",
			strings.NewReader(`{"text":"same here"}`)))

		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("empty comment never reaches the service", func() {
		w := s.do(httptest.NewRequest(http.MethodPost, "/confessions/"+confessionID.String()+"/comments",
			strings.NewReader(`{}`)))

		s.Equal(http.StatusBadRequest, w.Code)
	})
}
