package service

import (
	"log/slog"
	"time"

	"confessional/internal/moderation/metrics"
)

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

// WithEvidenceLocator adds evidence URLs to pending principal summaries.
func WithEvidenceLocator(l EvidenceLocator) Option {
	return func(s *Service) {
		s.evidence = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
