package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	adminToken string
	// run keeps emails unique across scenarios sharing one server.
	run string

	tokens         map[string]string
	principals     map[string]string
	lastConfession string
	lastAuthor     string
}

// NewTestContext creates a new test context against baseURL.
func NewTestContext(baseURL, adminToken, run string) *TestContext {
	return &TestContext{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		adminToken: adminToken,
		run:        run,
		tokens:     map[string]string{},
		principals: map[string]string{},
	}
}

// POST makes a JSON POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	return tc.POSTWithHeaders(path, body, nil)
}

// POSTWithHeaders makes a JSON POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

// POSTMultipart sends form fields plus one file part.
func (tc *TestContext) POSTMultipart(path string, fields map[string]string, fileField, contentType string, file []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="upload"`, fileField))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write(file); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

// Email maps a scenario name to an address unique to this run.
func (tc *TestContext) Email(name string) string {
	return fmt.Sprintf("%s+%s@example.com", name, tc.run)
}

func (tc *TestContext) AdminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + tc.adminToken}
}

// Headers returns the bearer header for a logged-in principal.
func (tc *TestContext) Headers(name string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tc.tokens[name]}
}

func (tc *TestContext) SetToken(name, token string)      { tc.tokens[name] = token }
func (tc *TestContext) PrincipalID(name string) string   { return tc.principals[name] }
func (tc *TestContext) SetPrincipalID(name, id string)   { tc.principals[name] = id }
func (tc *TestContext) LastConfession() string           { return tc.lastConfession }
func (tc *TestContext) SetLastConfession(id, by string)  { tc.lastConfession, tc.lastAuthor = id, by }
func (tc *TestContext) LastAuthor() string               { return tc.lastAuthor }
