package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_DoReturnsResponseFromFirstSuccessfulAttempt(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(2 * time.Second)
	resp, err := client.Do(func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, nil)
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, attempts)
}

func Test_DoDoesNotRetryClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := New(2 * time.Second)
	_, err := client.Do(func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, nil)
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func Test_DoFailsOnUnbuildableRequest(t *testing.T) {
	client := New(time.Second)
	_, err := client.Do(func() (*http.Request, error) {
		return http.NewRequest("\x00bad method", "://", nil)
	})
	require.Error(t, err)
}
