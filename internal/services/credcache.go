package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws/credentials"
)

const defaultRefreshMargin = 2 * time.Minute

// TemporaryCredentials are short-lived management credentials for the
// object store's admin API.
type TemporaryCredentials struct {
	AccessKeyID     string    `json:"accessKeyId"`
	SecretAccessKey string    `json:"secretAccessKey"`
	SessionToken    string    `json:"sessionToken,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// CredentialSource fetches a fresh set of temporary credentials.
type CredentialSource func(ctx context.Context) (TemporaryCredentials, error)

// CredentialCache is a time-boxed cache for management credentials. Reads go
// through a refresh-before-expiry margin so callers never hand out a value
// about to lapse mid-request. It caches credentials only, never link data.
type CredentialCache struct {
	mu      sync.Mutex
	source  CredentialSource
	margin  time.Duration
	current TemporaryCredentials
}

// NewCredentialCache creates a credential cache with a refresh margin
func NewCredentialCache(source CredentialSource, margin time.Duration) *CredentialCache {
	if margin <= 0 {
		margin = defaultRefreshMargin
	}
	return &CredentialCache{
		source: source,
		margin: margin,
	}
}

// Get returns cached credentials, refreshing when within the expiry margin
func (c *CredentialCache) Get(ctx context.Context) (TemporaryCredentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stale(time.Now()) {
		return c.current, nil
	}

	fresh, err := c.source(ctx)
	if err != nil {
		return TemporaryCredentials{}, fmt.Errorf("failed to refresh management credentials: %w", err)
	}

	c.current = fresh
	return c.current, nil
}

func (c *CredentialCache) stale(now time.Time) bool {
	if c.current.AccessKeyID == "" {
		return true
	}
	return now.After(c.current.ExpiresAt.Add(-c.margin))
}

// NewEndpointCredentialSource builds a source that exchanges an API key for
// temporary credentials at the store's management endpoint.
func NewEndpointCredentialSource(endpoint, apiKey string) CredentialSource {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context) (TemporaryCredentials, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return TemporaryCredentials{}, fmt.Errorf("failed to build credential request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return TemporaryCredentials{}, fmt.Errorf("credential endpoint request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return TemporaryCredentials{}, fmt.Errorf("credential endpoint returned status %d", resp.StatusCode)
		}

		var creds TemporaryCredentials
		if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
			return TemporaryCredentials{}, fmt.Errorf("failed to decode credentials: %w", err)
		}

		return creds, nil
	}
}

// cachedCredentialsProvider adapts CredentialCache to the AWS SDK credential
// provider interface so S3 sessions can ride on managed tokens.
type cachedCredentialsProvider struct {
	cache *CredentialCache
}

func (p *cachedCredentialsProvider) Retrieve() (credentials.Value, error) {
	creds, err := p.cache.Get(context.Background())
	if err != nil {
		return credentials.Value{}, err
	}

	return credentials.Value{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		ProviderName:    "CredentialCache",
	}, nil
}

func (p *cachedCredentialsProvider) IsExpired() bool {
	p.cache.mu.Lock()
	defer p.cache.mu.Unlock()
	return p.cache.stale(time.Now())
}
