package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confessional/internal/auth/service/mocks"
	"confessional/internal/ratelimit"
	"confessional/internal/verification/models"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/sentinel"
	"confessional/pkg/secrets"
	"confessional/pkg/testutil"
)

const password = "correct horse battery"

type LoginSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	credentials *mocks.MockCredentials
	tokens      *mocks.MockTokenIssuer
	limiter     *mocks.MockFailureLimiter
	service     *Service
	principal   *models.Principal
}

func TestLoginSuite(t *testing.T) {
	suite.Run(t, new(LoginSuite))
}

func (s *LoginSuite) SetupSuite() {
	hash, err := secrets.Hash(password)
	s.Require().NoError(err)
	s.principal = testutil.NewPrincipalBuilder().WithEmail("alice@example.com").Approved().Build()
	s.principal.CredentialHash = hash
}

func (s *LoginSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.credentials = mocks.NewMockCredentials(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.limiter = mocks.NewMockFailureLimiter(s.ctrl)
	svc, err := New(s.credentials, s.tokens,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithFailureLimiter(s.limiter),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *LoginSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *LoginSuite) notBlocked(email string) {
	s.limiter.EXPECT().Blocked(gomock.Any(), ratelimit.ClassLoginFailure, email).Return(false, nil)
}

func (s *LoginSuite) TestSuccessIssuesTokenAndClearsFailures() {
	expires := time.Now().Add(time.Hour)
	s.notBlocked("alice@example.com")
	s.credentials.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(s.principal, nil)
	s.limiter.EXPECT().Reset(gomock.Any(), ratelimit.ClassLoginFailure, "alice@example.com").Return(nil)
	s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), s.principal.ID).Return("signed", expires, nil)

	res, err := s.service.Login(context.Background(), " Alice@Example.com ", password)
	s.Require().NoError(err)
	s.Equal("signed", res.AccessToken)
	s.Equal("Bearer", res.TokenType)
}

func (s *LoginSuite) TestUnknownEmailAndWrongPasswordLookTheSame() {
	s.notBlocked("ghost@example.com")
	s.credentials.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").Return(nil, sentinel.ErrNotFound)
	s.limiter.EXPECT().Check(gomock.Any(), ratelimit.ClassLoginFailure, "ghost@example.com").Return(&ratelimit.Result{}, nil)
	_, unknownErr := s.service.Login(context.Background(), "ghost@example.com", password)

	s.notBlocked("alice@example.com")
	s.credentials.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(s.principal, nil)
	s.limiter.EXPECT().Check(gomock.Any(), ratelimit.ClassLoginFailure, "alice@example.com").Return(&ratelimit.Result{}, nil)
	_, wrongErr := s.service.Login(context.Background(), "alice@example.com", "not the password")

	s.True(dErrors.HasCode(unknownErr, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(wrongErr, dErrors.CodeUnauthorized))
	s.Equal(unknownErr.Error(), wrongErr.Error())
}

func (s *LoginSuite) TestMissingCredentialsAreUnauthorized() {
	_, err := s.service.Login(context.Background(), "", "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *LoginSuite) TestLockedOutCredentialIsRateLimited() {
	s.limiter.EXPECT().Blocked(gomock.Any(), ratelimit.ClassLoginFailure, "alice@example.com").Return(true, nil)

	_, err := s.service.Login(context.Background(), "alice@example.com", password)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *LoginSuite) TestLimiterOutageDoesNotBlockLogin() {
	s.limiter.EXPECT().Blocked(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
	s.credentials.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(s.principal, nil)
	s.limiter.EXPECT().Reset(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), s.principal.ID).Return("signed", time.Now(), nil)

	_, err := s.service.Login(context.Background(), "alice@example.com", password)
	s.NoError(err)
}

func (s *LoginSuite) TestStoreOutageIsTransient() {
	s.notBlocked("alice@example.com")
	s.credentials.EXPECT().FindByEmail(gomock.Any(), "alice@example.com").Return(nil, sentinel.ErrUnavailable)

	_, err := s.service.Login(context.Background(), "alice@example.com", password)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
}
