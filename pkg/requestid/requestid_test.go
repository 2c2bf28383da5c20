package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisworks/tenantcore/pkg/requestid"
)

func serveWithMiddleware(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var seen string
	handler := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddleware_GeneratesID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, seen := serveWithMiddleware(t, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(requestid.Header))

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestMiddleware_ReusesValidClientID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestid.Header, "client-id_42")

	rec, seen := serveWithMiddleware(t, req)

	assert.Equal(t, "client-id_42", seen)
	assert.Equal(t, "client-id_42", rec.Header().Get(requestid.Header))
}

func TestMiddleware_ReplacesInvalidClientID(t *testing.T) {
	t.Parallel()

	for name, id := range map[string]string{
		"injection": "abc\ndef",
		"spaces":    "has spaces",
		"too long":  strings.Repeat("a", 200),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestid.Header, id)

			_, seen := serveWithMiddleware(t, req)
			assert.NotEqual(t, id, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestFromContext_Missing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	attr, ok := extract(requestid.WithContext(context.Background(), "req-1"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-1", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
