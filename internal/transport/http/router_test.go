package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authhandler "confessional/internal/auth/handler"
	authmocks "confessional/internal/auth/handler/mocks"
	confessionhandler "confessional/internal/confession/handler"
	confessionmocks "confessional/internal/confession/handler/mocks"
	"confessional/internal/confession/models"
	jwttoken "confessional/internal/jwt_token"
	moderationhandler "confessional/internal/moderation/handler"
	moderationmocks "confessional/internal/moderation/handler/mocks"
	mmodels "confessional/internal/moderation/models"
	"confessional/internal/platform/health"
	"confessional/internal/ratelimit"
	id "confessional/pkg/domain"
	"confessional/pkg/platform/paging"
)

type RouterSuite struct {
	suite.Suite
	jwt         *jwttoken.JWTService
	confessions *confessionmocks.MockService
	moderation  *moderationmocks.MockService
	login       *authmocks.MockService
	router      http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwt, err := jwttoken.NewJWTService(strings.Repeat("k", 32), "confessional", "confessional-api", time.Hour)
	s.Require().NoError(err)
	s.jwt = jwt
	s.confessions = confessionmocks.NewMockService(ctrl)
	s.moderation = moderationmocks.NewMockService(ctrl)
	s.login = authmocks.NewMockService(ctrl)

	limiter, err := ratelimit.New(ratelimit.NewMemoryStore(),
		ratelimit.WithPolicy(ratelimit.ClassAuth, ratelimit.Policy{Limit: 2, Window: time.Minute}),
		ratelimit.WithPolicy(ratelimit.ClassWrite, ratelimit.Policy{Limit: 1, Window: time.Minute}))
	s.Require().NoError(err)

	s.router = NewRouter(Handlers{
		Health:      health.New("test"),
		Auth:        authhandler.New(s.login, logger),
		Confessions: confessionhandler.New(s.confessions, logger),
		Moderation:  moderationhandler.New(s.moderation, logger),
	}, jwttoken.NewJWTServiceAdapter(jwt), Config{}, logger,
		WithRateLimits(ratelimit.NewMiddleware(limiter, logger)))
}

func (s *RouterSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) bearer(principalID id.PrincipalID) string {
	token, _, err := s.jwt.GenerateAccessToken(context.Background(), principalID)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *RouterSuite) TestOperationalEndpoints() {
	s.Equal(http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/health/live", nil)).Code)
	s.Equal(http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func (s *RouterSuite) TestProtectedRoutesRequireBearer() {
	s.Run("missing token", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/confessions", nil))
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("forged token", func() {
		req := httptest.NewRequest(http.MethodGet, "/confessions", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		s.Equal(http.StatusUnauthorized, s.do(req).Code)
	})

	s.Run("valid token passes the subject to the service", func() {
		viewer := id.NewPrincipalID()
		s.confessions.EXPECT().Feed(gomock.Any(), viewer, paging.Request{}).
			Return(paging.Page[models.View]{Items: []models.View{}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/confessions", nil)
		req.Header.Set("Authorization", s.bearer(viewer))
		w := s.do(req)

		s.Equal(http.StatusOK, w.Code)
		s.NotEmpty(w.Header().Get("X-Request-ID"))
		s.NotEmpty(w.Header().Get("X-RateLimit-Limit"))
	})
}

func (s *RouterSuite) TestAuthClassIsRateLimited() {
	s.login.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
		req.RemoteAddr = "203.0.113.9:5555"
		last = s.do(req)
	}

	s.Equal(http.StatusTooManyRequests, last.Code)
	s.NotEmpty(last.Header().Get("Retry-After"))
}

func (s *RouterSuite) TestAdminListingsUseReadQuota() {
	admin := id.NewPrincipalID()
	s.moderation.EXPECT().ListReports(gomock.Any(), admin, paging.Request{}).
		Return(paging.Page[mmodels.ReportView]{Items: []mmodels.ReportView{}}, nil).Times(3)

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)
		req.Header.Set("Authorization", s.bearer(admin))
		req.RemoteAddr = "192.0.2.10:4000"
		w := s.do(req)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}

	s.Run("admin actions still use the write quota", func() {
		s.moderation.EXPECT().RemoveContent(gomock.Any(), gomock.Any(), admin).Return(nil)

		var last *httptest.ResponseRecorder
		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/admin/confessions/"+id.NewConfessionID().String()+"/remove", nil)
			req.Header.Set("Authorization", s.bearer(admin))
			req.RemoteAddr = "192.0.2.10:4000"
			last = s.do(req)
		}
		s.Equal(http.StatusTooManyRequests, last.Code)
	})
}

func (s *RouterSuite) TestLoginRejectsNonJSON() {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "198.51.100.4:1000"

	s.Equal(http.StatusUnsupportedMediaType, s.do(req).Code)
}
