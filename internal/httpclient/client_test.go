package httpclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapo-cl/mercadopublico-monitor/internal/httpclient"
)

// newTestServer creates a new test server with keep-alives disabled so closing
// it doesn't disturb parallel tests sharing the default transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func TestDefaultClient_Get_Success(t *testing.T) {
	t.Parallel()

	var receivedUserAgent, receivedAccept string
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		receivedAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Cantidad":0}`))
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(5 * time.Second)
	data, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte(`{"Cantidad":0}`), data)
	assert.Equal(t, httpclient.UserAgent, receivedUserAgent)
	assert.Equal(t, "application/json", receivedAccept)
}

func TestDefaultClient_Get_CustomUserAgent(t *testing.T) {
	t.Parallel()

	var receivedUserAgent string
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(0, httpclient.WithUserAgent("custom/2.0"))
	_, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "custom/2.0", receivedUserAgent)
}

func TestDefaultClient_Get_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "bad request", statusCode: http.StatusBadRequest},
		{name: "unauthorized", statusCode: http.StatusUnauthorized},
		{name: "not found", statusCode: http.StatusNotFound},
		{name: "too many requests", statusCode: http.StatusTooManyRequests},
		{name: "internal server error", statusCode: http.StatusInternalServerError},
		{name: "service unavailable", statusCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := httpclient.NewDefaultClient(5*time.Second, httpclient.WithRedactedParams("ticket"))
			_, err := client.Get(context.Background(), server.URL+"/licitaciones.json?fecha=01012024&ticket=s3cr3t")

			require.Error(t, err)
			var httpErr *httpclient.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Contains(t, err.Error(), fmt.Sprintf("HTTP %d", tt.statusCode))
			assert.NotContains(t, err.Error(), "s3cr3t")
			assert.Contains(t, httpErr.URL, "ticket=REDACTED")
		})
	}
}

func TestDefaultClient_Get_TransportErrorIsRedacted(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := server.URL
	server.Close()

	client := httpclient.NewDefaultClient(2*time.Second, httpclient.WithRedactedParams("ticket"))
	_, err := client.Get(context.Background(), url+"/licitaciones.json?codigo=1-2-LE24&ticket=s3cr3t")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute request")
	assert.NotContains(t, err.Error(), "s3cr3t")
}

func TestDefaultClient_Get_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultClient_Get_SizeLimitExceeded(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", httpclient.MaxResponseSize+1))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(5 * time.Second)
	_, err := client.Get(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		params []string
		want   string
	}{
		{
			name:   "masks ticket",
			raw:    "https://api.example.cl/licitaciones.json?fecha=01012024&ticket=abc",
			params: []string{"ticket"},
			want:   "https://api.example.cl/licitaciones.json?fecha=01012024&ticket=REDACTED",
		},
		{
			name:   "no params configured",
			raw:    "https://api.example.cl/x?ticket=abc",
			params: nil,
			want:   "https://api.example.cl/x?ticket=abc",
		},
		{
			name:   "param absent",
			raw:    "https://api.example.cl/x?codigo=1",
			params: []string{"ticket"},
			want:   "https://api.example.cl/x?codigo=1",
		},
		{
			name:   "unparsable url",
			raw:    "://bad\x7f?ticket=abc",
			params: []string{"ticket"},
			want:   "REDACTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, httpclient.RedactURL(tt.raw, tt.params...))
		})
	}
}
