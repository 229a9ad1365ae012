package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"confessional/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		expectedIP string
	}{
		{
			name:       "ignores XFF from untrusted peer",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			expectedIP: "192.168.1.1",
		},
		{
			name:       "uses first XFF hop from trusted proxy",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2"},
			expectedIP: "203.0.113.1",
		},
		{
			name:       "falls back to X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			expectedIP: "198.51.100.7",
		},
		{
			name:       "rejects malformed forwarded address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			expectedIP: "10.0.0.1",
		},
		{
			name:       "handles bracketed ipv6",
			remoteAddr: "[::1]:8080",
			expectedIP: "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := NewMiddleware(tt.trusted).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = requestcontext.ClientIP(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedIP, got)
		})
	}
}
