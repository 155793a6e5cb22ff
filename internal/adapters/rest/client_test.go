package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/internal/ports"
)

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Logger: noopLogger{}})
	require.NoError(t, err)
	return c, srv
}

func TestNewRequiresLoggerAndBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)

	_, err = New(Config{Logger: noopLogger{}})
	assert.Error(t, err)
}

func TestTokenFileHandling(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("  secret-token\n"), 0600))

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"accounts": []}`))
	}))
	t.Cleanup(srv.Close)

	// Token is read and trimmed at construction time.
	c, err := New(Config{BaseURL: srv.URL, TokenPath: tokenPath, Logger: noopLogger{}})
	require.NoError(t, err)

	_, err = c.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	// A missing token file is not an error; requests go out unauthenticated.
	c2, err := New(Config{BaseURL: srv.URL, TokenPath: filepath.Join(dir, "absent"), Logger: noopLogger{}})
	require.NoError(t, err)
	assert.Empty(t, c2.token)
}

func TestRequestCarriesCorrelationID(t *testing.T) {
	var first, second string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if first == "" {
			first = r.Header.Get("X-Request-ID")
		} else {
			second = r.Header.Get("X-Request-ID")
		}
		w.Write([]byte(`{"accounts": []}`))
	}))

	ctx := context.Background()
	_, err := c.GetAccounts(ctx)
	require.NoError(t, err)
	_, err = c.GetAccounts(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second, "every request gets a fresh correlation ID")
}

func TestGetAccountsDecodesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/accounts", r.URL.Path)
		w.Write([]byte(`{"accounts": [{"accountid": "a1", "balance": "1234.56", "currency": "USDT"}]}`))
	}))

	accs, err := c.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "a1", accs[0].AccountID)
	assert.True(t, accs[0].Balance.Equal(decimal.RequireFromString("1234.56")))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, ports.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, ports.ErrUnauthorized},
		{"not found", http.StatusNotFound, `{"detail": "no such account"}`, ports.ErrNotFound},
		{"request timeout", http.StatusRequestTimeout, `{}`, ports.ErrTimeout},
		{"bad request", http.StatusBadRequest, `{"message": "volume must be positive"}`, ports.ErrInvalidRequest},
		{"unprocessable", http.StatusUnprocessableEntity, `{}`, ports.ErrInvalidRequest},
		{"server error", http.StatusInternalServerError, `{}`, ports.ErrServerError},
		{"bad gateway", http.StatusBadGateway, `{}`, ports.ErrServerError},
		{"conflict falls through", http.StatusConflict, `{}`, ports.ErrServerRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			_, err := c.GetAccounts(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestServerMessageSurfacesInError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "volume must be positive"}`))
	}))

	_, err := c.GetAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume must be positive")
}

func TestMalformedSuccessBodyIsDecodeError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts": [`))
	}))

	_, err := c.GetAccounts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrDecodeFailed)
}

func TestContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.GetAccounts(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}

func TestTimeoutMapsToErrTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Logger: noopLogger{}})
	require.NoError(t, err)

	_, err = c.GetAccounts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrTimeout)
}

func TestUnreachableBackendIsConnectionFailed(t *testing.T) {
	// Nothing listens on this port.
	c, err := New(Config{BaseURL: "http://127.0.0.1:1", Logger: noopLogger{}})
	require.NoError(t, err)

	_, err = c.GetAccounts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConnectionFailed)
}
