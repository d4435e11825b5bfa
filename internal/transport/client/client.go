// Package client is a Go HTTP client for services behind the transport
// envelope middleware. Request bodies are sent encrypted and encrypted
// responses are unwrapped before decoding.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/allisson/carevault/internal/errors"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
	transportService "github.com/allisson/carevault/internal/transport/service"
)

const clientContextHeader = "X-Client-Context"

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client sends enveloped requests.
type Client struct {
	baseURL       string
	clientContext string
	cipher        transportService.Cipher
	httpClient    *http.Client
	token         string
}

// New creates a client. clientContext is sent as X-Client-Context and binds
// the session seed; it must be stable for the lifetime of the client.
func New(baseURL, clientContext string, cipher transportService.Cipher, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		clientContext: clientContext,
		cipher:        cipher,
		httpClient:    httpClient,
	}
}

// WithToken returns a copy of the client that sends token as a bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Do sends body (nil for none) and decodes the response into out (nil to discard).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := c.cipher.EncryptPayload(body, c.clientContext)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(transportDomain.Envelope{EncryptedPayload: payload})
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal envelope")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, "failed to build request")
	}
	req.Header.Set(clientContextHeader, c.clientContext)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, "failed to read response")
	}

	plaintext, err := c.unwrap(raw)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(plaintext, apiErr)
		return apiErr
	}

	if out == nil || len(plaintext) == 0 {
		return nil
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return apperrors.Wrap(err, "failed to decode response")
	}
	return nil
}

// unwrap returns the plaintext of an enveloped body or the body itself.
func (c *Client) unwrap(raw []byte) ([]byte, error) {
	payload, ok, err := transportDomain.ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return raw, nil
	}
	return c.cipher.DecryptPayload(payload, c.clientContext)
}
