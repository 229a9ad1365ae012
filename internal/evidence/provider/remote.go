package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"confessional/pkg/platform/circuit"
	"confessional/pkg/platform/sentinel"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteConfig configures the remote object store client.
type RemoteConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
}

// Remote talks to an object store exposing PUT and DELETE on /objects/{key}.
// Calls fail fast with sentinel.ErrUnavailable while the breaker is open.
type Remote struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	breaker *circuit.Breaker
}

func NewRemote(cfg RemoteConfig) (*Remote, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote evidence store url is invalid: %q", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuit.New("evidence-remote")
	}
	return &Remote{baseURL: base.String(), apiKey: cfg.APIKey, client: client, breaker: breaker}, nil
}

func (r *Remote) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := r.do(ctx, http.MethodPut, key, data, contentType)
	return err
}

func (r *Remote) Delete(ctx context.Context, key string) error {
	status, err := r.do(ctx, http.MethodDelete, key, nil, "")
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("object %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}

// Check probes the store's health endpoint for readiness.
func (r *Remote) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("object store health: %d", resp.StatusCode)
	}
	return nil
}

// do sends one request through the breaker. A 404 is returned as a status,
// not an error, and does not count as a failure.
func (r *Remote) do(ctx context.Context, method, key string, body []byte, contentType string) (int, error) {
	if err := r.breaker.Allow(); err != nil {
		return 0, fmt.Errorf("object store: %w: %w", sentinel.ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.objectURL(key), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build object request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.breaker.Failure()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("object store timeout: %w: %w", sentinel.ErrUnavailable, err)
		}
		return 0, fmt.Errorf("object store request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		r.breaker.Failure()
		return resp.StatusCode, fmt.Errorf("object store returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode == http.StatusNotFound:
		r.breaker.Success()
		return resp.StatusCode, nil
	case resp.StatusCode >= 400:
		r.breaker.Success()
		return resp.StatusCode, fmt.Errorf("object store rejected %s %s: %d", method, key, resp.StatusCode)
	}
	r.breaker.Success()
	return resp.StatusCode, nil
}

func (r *Remote) objectURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return r.baseURL + "/objects/" + strings.Join(parts, "/")
}
