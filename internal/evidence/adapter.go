// Package evidence stores identity evidence and confession media, and owns the
// retried deletion of evidence once a principal has been adjudicated.
package evidence

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"confessional/internal/evidence/metrics"
	"confessional/internal/evidence/provider"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/sentinel"
)

const (
	// DefaultMaxBytes caps an uploaded image.
	DefaultMaxBytes int64 = 4 << 20
	// DefaultCallTimeout bounds every provider call.
	DefaultCallTimeout = 10 * time.Second

	evidencePrefix = "evidence/"
	mediaPrefix    = "media/"
)

// Adapter validates uploads and maps provider failures to domain codes.
type Adapter struct {
	provider    provider.Provider
	baseURL     string
	maxBytes    int64
	callTimeout time.Duration
	tracer      trace.Tracer
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type AdapterOption func(*Adapter)

func WithMaxBytes(n int64) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

func WithCallTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.callTimeout = d
		}
	}
}

func WithTracer(t trace.Tracer) AdapterOption {
	return func(a *Adapter) {
		if t != nil {
			a.tracer = t
		}
	}
}

func WithAdapterMetrics(m *metrics.Metrics) AdapterOption {
	return func(a *Adapter) {
		a.metrics = m
	}
}

func WithAdapterLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter builds an adapter. publicBaseURL comes from configuration and is
// the only source of locators handed out by URLFor.
func NewAdapter(p provider.Provider, publicBaseURL string, opts ...AdapterOption) (*Adapter, error) {
	if p == nil {
		return nil, errors.New("evidence provider is required")
	}
	if strings.TrimSpace(publicBaseURL) == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "evidence public base url is required")
	}
	a := &Adapter{
		provider:    p,
		baseURL:     strings.TrimRight(publicBaseURL, "/"),
		maxBytes:    DefaultMaxBytes,
		callTimeout: DefaultCallTimeout,
		tracer:      otel.Tracer("confessional/evidence"),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Store validates an identity image and stores it under a server-generated key.
func (a *Adapter) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	return a.put(ctx, evidencePrefix, data, contentType)
}

// StoreMedia stores a confession image. Same validation as evidence, separate key space.
func (a *Adapter) StoreMedia(ctx context.Context, data []byte, contentType string) (string, error) {
	return a.put(ctx, mediaPrefix, data, contentType)
}

// Delete removes a blob. A missing blob counts as deleted.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dErrors.New(dErrors.CodeValidation, "evidence key is required")
	}
	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	ctx, span := a.tracer.Start(ctx, "evidence.delete", trace.WithAttributes(attribute.String("evidence.key_prefix", prefixOf(key))))

	err := a.provider.Delete(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		span.AddEvent("already absent")
		err = nil
	}
	endSpan(span, err)
	a.observe("delete", err)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeTransient, "evidence store unavailable")
	}
	return nil
}

// URLFor derives the display locator for key from the configured base URL.
func (a *Adapter) URLFor(key string) string {
	if key == "" {
		return ""
	}
	return a.baseURL + "/" + key
}

func (a *Adapter) put(ctx context.Context, prefix string, data []byte, contentType string) (string, error) {
	if err := a.validate(data, contentType); err != nil {
		return "", err
	}
	key := prefix + uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()
	ctx, span := a.tracer.Start(ctx, "evidence.put", trace.WithAttributes(
		attribute.String("evidence.key_prefix", prefix),
		attribute.Int("evidence.size", len(data)),
	))

	err := a.provider.Put(ctx, key, data, normalizeType(contentType))
	endSpan(span, err)
	a.observe("put", err)
	if err != nil {
		a.logger.WarnContext(ctx, "evidence put failed", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeTransient, "evidence store unavailable")
	}
	return key, nil
}

// validate requires both the declared and the sniffed type to be images.
func (a *Adapter) validate(data []byte, contentType string) error {
	if len(data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "image is required")
	}
	if int64(len(data)) > a.maxBytes {
		return dErrors.New(dErrors.CodeSizeExceeded, "image exceeds the size limit")
	}
	if !isImage(normalizeType(contentType)) {
		return dErrors.New(dErrors.CodeUnsupportedType, "file must be an image")
	}
	if !isImage(normalizeType(http.DetectContentType(data))) {
		return dErrors.New(dErrors.CodeUnsupportedType, "file content is not an image")
	}
	return nil
}

func (a *Adapter) observe(op string, err error) {
	if a.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	a.metrics.IncProviderCall(op, outcome)
}

func normalizeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func isImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") && len(mediaType) > len("image/")
}

func prefixOf(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i+1]
	}
	return ""
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
