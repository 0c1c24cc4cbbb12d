package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialCacheServesCachedValue(t *testing.T) {
	fetches := 0
	source := func(ctx context.Context) (TemporaryCredentials, error) {
		fetches++
		return TemporaryCredentials{
			AccessKeyID:     "AKIA123",
			SecretAccessKey: "secret",
			ExpiresAt:       time.Now().Add(time.Hour),
		}, nil
	}

	cache := NewCredentialCache(source, time.Minute)

	for i := 0; i < 5; i++ {
		creds, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "AKIA123", creds.AccessKeyID)
	}
	assert.Equal(t, 1, fetches)
}

func TestCredentialCacheRefreshesWithinMargin(t *testing.T) {
	fetches := 0
	source := func(ctx context.Context) (TemporaryCredentials, error) {
		fetches++
		// Expires 30s out, inside the 1m refresh margin, so every read
		// triggers a refresh.
		return TemporaryCredentials{
			AccessKeyID:     "AKIA123",
			SecretAccessKey: "secret",
			ExpiresAt:       time.Now().Add(30 * time.Second),
		}, nil
	}

	cache := NewCredentialCache(source, time.Minute)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestCredentialCacheSourceFailure(t *testing.T) {
	sourceErr := errors.New("endpoint unreachable")
	cache := NewCredentialCache(func(ctx context.Context) (TemporaryCredentials, error) {
		return TemporaryCredentials{}, sourceErr
	}, time.Minute)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, sourceErr)
}

func TestCredentialCacheDefaultMargin(t *testing.T) {
	cache := NewCredentialCache(func(ctx context.Context) (TemporaryCredentials, error) {
		return TemporaryCredentials{}, nil
	}, 0)
	assert.Equal(t, defaultRefreshMargin, cache.margin)
}

func TestEndpointCredentialSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"accessKeyId": "AKIA123",
			"secretAccessKey": "secret",
			"sessionToken": "session",
			"expiresAt": "2030-01-01T00:00:00Z"
		}`))
	}))
	defer server.Close()

	source := NewEndpointCredentialSource(server.URL, "test-api-key")
	creds, err := source(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AKIA123", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
	assert.Equal(t, "session", creds.SessionToken)
	assert.Equal(t, 2030, creds.ExpiresAt.Year())
}

func TestEndpointCredentialSourceNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := NewEndpointCredentialSource(server.URL, "bad-key")
	_, err := source(context.Background())
	assert.Error(t, err)
}

func TestCachedCredentialsProviderRetrieve(t *testing.T) {
	cache := NewCredentialCache(func(ctx context.Context) (TemporaryCredentials, error) {
		return TemporaryCredentials{
			AccessKeyID:     "AKIA123",
			SecretAccessKey: "secret",
			SessionToken:    "session",
			ExpiresAt:       time.Now().Add(time.Hour),
		}, nil
	}, time.Minute)

	provider := &cachedCredentialsProvider{cache: cache}
	assert.True(t, provider.IsExpired(), "empty cache starts expired")

	value, err := provider.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "AKIA123", value.AccessKeyID)
	assert.Equal(t, "session", value.SessionToken)
	assert.False(t, provider.IsExpired())
}
