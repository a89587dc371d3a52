package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fasplanners/pkg/eventapi"
)

// NetworkErrorMessage is shown when the API could not be reached
const NetworkErrorMessage = "Network error. Please try again."

// DefaultSubmitFailure is shown when the API rejects a submission without a reason
const DefaultSubmitFailure = "Failed to submit request"

// Receipt is the result of a successful submission
type Receipt struct {
	TrackingCode string
	Message      string
	Record       json.RawMessage
}

// Submitter sends a finished payload to the API
type Submitter interface {
	Submit(ctx context.Context, p *eventapi.SubmitRequest) (*Receipt, error)
}

// APIError is a failure reported by the API in its envelope
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NetworkError wraps a failure to reach the API or to read its answer
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// Message returns the text shown to the user for a failed submission
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return DefaultSubmitFailure
		}
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NetworkErrorMessage
	}
	return err.Error()
}

// HTTPClient talks to the event request API
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the API at baseURL. A nil client uses
// one with a 30s timeout.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Submit posts p to the submission endpoint
func (c *HTTPClient) Submit(ctx context.Context, p *eventapi.SubmitRequest) (*Receipt, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/event-requests", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return &Receipt{TrackingCode: env.TrackingCode, Message: env.Message, Record: env.Data}, nil
}

// Track looks up a request by tracking code and returns the record as sent by the API
func (c *HTTPClient) Track(ctx context.Context, code string) (json.RawMessage, error) {
	target := c.baseURL + "/api/track-event?" + url.Values{"code": {code}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	env, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) do(req *http.Request) (*eventapi.Envelope, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var env eventapi.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, &NetworkError{Err: fmt.Errorf("invalid response: %w", err)}
	}
	if !env.Success || resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	return &env, nil
}
