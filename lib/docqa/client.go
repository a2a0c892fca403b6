// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package docqa is the client for the document question-answering
// backend. The backend exposes two operations:
//
//   - Upload: POST {base}/upload/ with the document as the multipart
//     form field "file". Responds {"user_id": "...", "chunks": N}; the
//     user_id is the opaque session identifier for later queries.
//   - Query: POST {base}/query/ with {"user_id": "...", "query": "..."}.
//     Responds {"answer": "..."}. HTTP 400 means the session is unknown
//     or has expired server-side and the document must be uploaded
//     again.
//
// Any other non-2xx status is a [*StatusError]. Transport failures are
// returned wrapped; callers classify them with errors.Is/As.
package docqa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bureau-foundation/docdesk/lib/netutil"
	"github.com/bureau-foundation/docdesk/lib/version"
)

// SessionID is the opaque token issued by the backend on upload.
type SessionID string

// ErrSessionExpired is returned by Query when the backend reports the
// session as no longer valid (HTTP 400).
var ErrSessionExpired = errors.New("docqa: session expired")

// SessionExpiredStatus is the HTTP status the backend uses to signal
// an unknown or expired session on the query endpoint.
const SessionExpiredStatus = http.StatusBadRequest

// DefaultTimeout bounds a single request when the caller's context has
// no deadline. Uploads include server-side embedding of the whole
// document, so the bound is generous.
const DefaultTimeout = 2 * time.Minute

// StatusError is a non-success HTTP response.
type StatusError struct {
	Operation  string // "upload" or "query".
	StatusCode int
	Body       string // Trimmed snippet of the response body.
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("docqa: %s: HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("docqa: %s: HTTP %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Client talks to one backend base URL. Safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a Client for the backend at baseURL. Relative
// endpoint paths are resolved against it, so a base with a path prefix
// ("https://host/app/") keeps that prefix.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("docqa: base URL is empty")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("docqa: parsing base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("docqa: base URL %q must be http or https", baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// BaseURL returns the backend base URL.
func (client *Client) BaseURL() string {
	return client.baseURL.String()
}

type uploadResponse struct {
	UserID string `json:"user_id"`
	Chunks int    `json:"chunks"`
}

type queryRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// Upload sends a document and returns the session identifier the
// backend assigned to it.
func (client *Client) Upload(ctx context.Context, name string, data []byte) (SessionID, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("docqa: building upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("docqa: building upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("docqa: building upload form: %w", err)
	}

	var response uploadResponse
	if err := client.post(ctx, "upload", "upload/", writer.FormDataContentType(), &body, &response); err != nil {
		return "", err
	}
	if response.UserID == "" {
		return "", errors.New("docqa: upload response carried no session identifier")
	}
	return SessionID(response.UserID), nil
}

// Query asks a question against an uploaded document. Returns
// ErrSessionExpired (wrapped) when the backend no longer knows the
// session.
func (client *Client) Query(ctx context.Context, session SessionID, query string) (string, error) {
	payload, err := json.Marshal(queryRequest{UserID: string(session), Query: query})
	if err != nil {
		return "", fmt.Errorf("docqa: encoding query: %w", err)
	}

	var response queryResponse
	err = client.post(ctx, "query", "query/", "application/json", bytes.NewReader(payload), &response)
	if err != nil {
		var statusError *StatusError
		if errors.As(err, &statusError) && statusError.StatusCode == SessionExpiredStatus {
			return "", fmt.Errorf("%w: %s", ErrSessionExpired, statusError.Body)
		}
		return "", err
	}
	return response.Answer, nil
}

// post sends one request and decodes a 2xx JSON response into result.
func (client *Client) post(ctx context.Context, operation, path, contentType string, body io.Reader, result any) error {
	endpoint := client.baseURL.ResolveReference(&url.URL{Path: path})

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("docqa: creating %s request: %w", operation, err)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("docqa: %s request: %w", operation, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &StatusError{
			Operation:  operation,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}
	if err := netutil.DecodeResponse(response.Body, result); err != nil {
		return fmt.Errorf("docqa: %s response: %w", operation, err)
	}
	return nil
}
