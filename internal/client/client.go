// Package client is the HTTP transport for accessflow against the link
// service's public surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is a typed failure decoded from the service's error envelope
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

// LinkClient talks to the link service's unauthenticated endpoints
type LinkClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLinkClient creates a client for the given API base URL
func NewLinkClient(baseURL string, timeout time.Duration) *LinkClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LinkClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type metaPayload struct {
	IsPasswordProtected bool     `json:"isPasswordProtected"`
	VisitorFields       []string `json:"visitorFields"`
	SignedURL           string   `json:"signedUrl"`
	FileName            string   `json:"fileName"`
	Size                int64    `json:"size"`
	FileType            string   `json:"fileType"`
	DocumentID          string   `json:"documentId"`
}

type filePayload struct {
	SignedURL  string `json:"signedUrl"`
	FileName   string `json:"fileName"`
	Size       int64  `json:"size"`
	FileType   string `json:"fileType"`
	DocumentID string `json:"documentId"`
}

type accessPayload struct {
	Password    string                 `json:"password,omitempty"`
	VisitorInfo map[string]interface{} `json:"visitorInfo,omitempty"`
}

// Meta is the decoded metadata response
type Meta struct {
	IsPasswordProtected bool
	VisitorFields       []string
	File                *File
}

// File is the decoded signed file descriptor
type File struct {
	SignedURL  string
	FileName   string
	Size       int64
	FileType   string
	DocumentID string
}

// GetLinkMeta fetches the gate-decision metadata for a token
func (c *LinkClient) GetLinkMeta(ctx context.Context, token string) (*Meta, error) {
	var payload metaPayload
	if err := c.do(ctx, http.MethodGet, "/api/links/"+token, nil, &payload); err != nil {
		return nil, err
	}

	meta := &Meta{
		IsPasswordProtected: payload.IsPasswordProtected,
		VisitorFields:       payload.VisitorFields,
	}
	if payload.SignedURL != "" {
		meta.File = &File{
			SignedURL:  payload.SignedURL,
			FileName:   payload.FileName,
			Size:       payload.Size,
			FileType:   payload.FileType,
			DocumentID: payload.DocumentID,
		}
	}

	return meta, nil
}

// RequestAccess submits a gate payload and returns the signed file
func (c *LinkClient) RequestAccess(ctx context.Context, token, password string, visitorInfo map[string]interface{}) (*File, error) {
	body := accessPayload{
		Password:    password,
		VisitorInfo: visitorInfo,
	}

	var payload filePayload
	if err := c.do(ctx, http.MethodPost, "/api/links/"+token+"/access", body, &payload); err != nil {
		return nil, err
	}

	return &File{
		SignedURL:  payload.SignedURL,
		FileName:   payload.FileName,
		Size:       payload.Size,
		FileType:   payload.FileType,
		DocumentID: payload.DocumentID,
	}, nil
}

func (c *LinkClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
