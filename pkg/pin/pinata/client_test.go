package pinata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		APIKey:    "key",
		APISecret: "secret",
		JWT:       "jwt-token",
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(Config{JWT: "jwt"})
	assert.Error(t, err)

	_, err = New(Config{APIKey: "key", APISecret: "secret"})
	assert.Error(t, err)
}

func TestPin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		require.Equal(t, "key", r.Header.Get("pinata_api_key"))
		require.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)

		body, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"IpfsHash":"QmTestHash","PinSize":9,"Timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	gateway, err := New(testConfig(server.URL))
	require.NoError(t, err)

	handle, err := gateway.Pin(context.Background(), "report.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "QmTestHash", string(handle))
}

func TestPin_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	gateway, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = gateway.Pin(context.Background(), "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestPin_MissingHash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"PinSize":1}`))
	}))
	defer server.Close()

	gateway, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = gateway.Pin(context.Background(), "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestUnpin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/pinning/unpin/QmTestHash", r.URL.Path)
		require.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gateway, err := New(testConfig(server.URL))
	require.NoError(t, err)

	assert.NoError(t, gateway.Unpin(context.Background(), "QmTestHash"))
}

func TestUnpin_NotFoundIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	gateway, err := New(testConfig(server.URL))
	require.NoError(t, err)

	assert.NoError(t, gateway.Unpin(context.Background(), "QmGone"))
}

func TestUnpin_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gateway, err := New(testConfig(server.URL))
	require.NoError(t, err)

	assert.Error(t, gateway.Unpin(context.Background(), "QmBad"))
}
