package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"confessional/pkg/platform/circuit"
	"confessional/pkg/platform/sentinel"
)

type MemorySuite struct {
	suite.Suite
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) TestPutGetDelete() {
	ctx := context.Background()
	m := NewMemory()
	s.Require().NoError(m.Put(ctx, "evidence/a", []byte("png"), "image/png"))

	b, err := m.Get(ctx, "evidence/a")
	s.Require().NoError(err)
	s.Equal("image/png", b.ContentType)

	s.NoError(m.Delete(ctx, "evidence/a"))
	s.ErrorIs(m.Delete(ctx, "evidence/a"), sentinel.ErrNotFound)
	s.Zero(m.Len())
}

type RemoteSuite struct {
	suite.Suite
	server *httptest.Server
	status atomic.Int32
	calls  atomic.Int32
	lastAK atomic.Value
}

func TestRemoteSuite(t *testing.T) {
	suite.Run(t, new(RemoteSuite))
}

func (s *RemoteSuite) SetupTest() {
	s.status.Store(http.StatusOK)
	s.calls.Store(0)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.lastAK.Store(r.Header.Get("X-API-Key"))
		w.WriteHeader(int(s.status.Load()))
	}))
}

func (s *RemoteSuite) TearDownTest() {
	s.server.Close()
}

func (s *RemoteSuite) newRemote(breaker *circuit.Breaker) *Remote {
	r, err := NewRemote(RemoteConfig{BaseURL: s.server.URL, APIKey: "k", Timeout: time.Second, Breaker: breaker})
	s.Require().NoError(err)
	return r
}

func (s *RemoteSuite) TestRejectsInvalidBaseURL() {
	_, err := NewRemote(RemoteConfig{BaseURL: "not a url"})
	s.Error(err)
}

func (s *RemoteSuite) TestPutSendsAPIKey() {
	r := s.newRemote(nil)
	s.NoError(r.Put(context.Background(), "evidence/x", []byte("data"), "image/png"))
	s.Equal("k", s.lastAK.Load())
}

func (s *RemoteSuite) TestDeleteNotFound() {
	s.status.Store(http.StatusNotFound)
	r := s.newRemote(nil)
	s.ErrorIs(r.Delete(context.Background(), "evidence/x"), sentinel.ErrNotFound)
}

func (s *RemoteSuite) TestServerErrorIsUnavailable() {
	s.status.Store(http.StatusBadGateway)
	r := s.newRemote(nil)
	s.ErrorIs(r.Delete(context.Background(), "evidence/x"), sentinel.ErrUnavailable)
}

func (s *RemoteSuite) TestBreakerOpensAndFailsFast() {
	s.status.Store(http.StatusServiceUnavailable)
	r := s.newRemote(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)))

	for range 2 {
		s.ErrorIs(r.Delete(context.Background(), "evidence/x"), sentinel.ErrUnavailable)
	}
	before := s.calls.Load()
	err := r.Delete(context.Background(), "evidence/x")
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.ErrorIs(err, circuit.ErrOpen)
	s.Equal(before, s.calls.Load())
}
