package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func Test_AcquireTokenPresentsBearerAndReturnsPlaintextBody(t *testing.T) {
	var gotAuth string
	var body sfcLoginRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte("sfc-token-xyz"))
	}))
	defer server.Close()

	provider := NewSfcTokenProvider(SfcTokenConfig{
		URL: server.URL, BorderPostID: 11, BoxID: 22, PassengerControlType: 1, Timeout: 2 * time.Second,
	}, hclog.NewNullLogger())

	res := provider.AcquireToken(context.Background(), "access-abc")
	require.True(t, res.IsSuccess())
	require.Equal(t, "sfc-token-xyz", res.Value())
	require.Equal(t, "Bearer access-abc", gotAuth)
	require.Equal(t, 11, body.BorderPostID)
	require.Equal(t, 22, body.BoxID)
}

func Test_AcquireTokenFailsOnEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	provider := NewSfcTokenProvider(SfcTokenConfig{URL: server.URL, Timeout: 2 * time.Second}, hclog.NewNullLogger())
	res := provider.AcquireToken(context.Background(), "access-abc")
	require.True(t, res.IsFailure())
}
