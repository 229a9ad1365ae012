package service

import (
	"log/slog"
	"time"

	"confessional/internal/confession/metrics"
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

// WithMediaStore enables image attachments. Without it an image is rejected.
func WithMediaStore(m MediaStore) Option {
	return func(s *Service) {
		s.media = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
