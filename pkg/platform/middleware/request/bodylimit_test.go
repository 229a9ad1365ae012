package request

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	read := func(limit int64, size int) (int, error) {
		var n int
		var readErr error
		handler := BodyLimit(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(r.Body)
			n, readErr = len(data), err
		}))
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", size)))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		return n, readErr
	}

	t.Run("body at the limit is read fully", func(t *testing.T) {
		n, err := read(100, 100)
		assert.NoError(t, err)
		assert.Equal(t, 100, n)
	})

	t.Run("body over the limit fails with MaxBytesError", func(t *testing.T) {
		_, err := read(100, 101)
		var maxErr *http.MaxBytesError
		assert.True(t, errors.As(err, &maxErr))
	})
}
