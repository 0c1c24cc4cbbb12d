package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLinkMetaGated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/links/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"isPasswordProtected": true,
				"visitorFields": ["email"]
			}
		}`))
	}))
	defer server.Close()

	c := NewLinkClient(server.URL, time.Second)
	meta, err := c.GetLinkMeta(context.Background(), "abc123")
	require.NoError(t, err)

	assert.True(t, meta.IsPasswordProtected)
	assert.Equal(t, []string{"email"}, meta.VisitorFields)
	assert.Nil(t, meta.File, "gated metadata carries no file descriptor")
}

func TestGetLinkMetaFullyPublic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"isPasswordProtected": false,
				"visitorFields": [],
				"signedUrl": "https://s3.example.com/signed",
				"fileName": "report.pdf",
				"size": 2048,
				"fileType": "application/pdf",
				"documentId": "64f000000000000000000001"
			}
		}`))
	}))
	defer server.Close()

	c := NewLinkClient(server.URL, time.Second)
	meta, err := c.GetLinkMeta(context.Background(), "abc123")
	require.NoError(t, err)

	require.NotNil(t, meta.File)
	assert.Equal(t, "https://s3.example.com/signed", meta.File.SignedURL)
	assert.Equal(t, "report.pdf", meta.File.FileName)
	assert.Equal(t, int64(2048), meta.File.Size)
}

func TestGetLinkMetaErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		w.Write([]byte(`{
			"success": false,
			"error": {"code": "LINK_EXPIRED", "message": "Link has expired"}
		}`))
	}))
	defer server.Close()

	c := NewLinkClient(server.URL, time.Second)
	_, err := c.GetLinkMeta(context.Background(), "abc123")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "LINK_EXPIRED", apiErr.Code)
	assert.Equal(t, http.StatusGone, apiErr.StatusCode)
}

func TestRequestAccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/links/abc123/access", r.URL.Path)

		var body struct {
			Password    string                 `json:"password"`
			VisitorInfo map[string]interface{} `json:"visitorInfo"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "secret", body.Password)
		assert.Equal(t, "ada@example.com", body.VisitorInfo["email"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"signedUrl": "https://s3.example.com/signed",
				"fileName": "report.pdf",
				"size": 2048,
				"fileType": "application/pdf",
				"documentId": "64f000000000000000000001"
			}
		}`))
	}))
	defer server.Close()

	c := NewLinkClient(server.URL, time.Second)
	file, err := c.RequestAccess(context.Background(), "abc123", "secret", map[string]interface{}{
		"email": "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/signed", file.SignedURL)
	assert.Equal(t, "application/pdf", file.FileType)
}

func TestRequestAccessInvalidPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{
			"success": false,
			"error": {"code": "INVALID_LINK_PASSWORD", "message": "Link password missing or incorrect"}
		}`))
	}))
	defer server.Close()

	c := NewLinkClient(server.URL, time.Second)
	_, err := c.RequestAccess(context.Background(), "abc123", "nope", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_LINK_PASSWORD", apiErr.Code)
}
