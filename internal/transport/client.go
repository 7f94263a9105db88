package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opforge/opforge/internal/dispatch"
)

// Client sends remote invocations to a delegate host. It implements
// dispatch.Transport.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client against the given host base URL. token may be
// empty when the host runs without authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Call serializes the request, posts it to the delegate endpoint, and
// deserializes the result. Error envelopes carrying a denial are rebuilt into
// the same typed error a local denial produces.
func (c *Client) Call(ctx context.Context, delegateID string, req dispatch.RemoteRequest) (any, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode remote request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/delegate/%s", c.baseURL, delegateID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transport response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope errorResponse
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("transport call failed with status %d", resp.StatusCode)
		}
		if envelope.Error.Denied != nil {
			return nil, envelope.Error.Denied.toError()
		}
		return nil, fmt.Errorf("remote invocation failed: %s", envelope.Error.Message)
	}

	var result callResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode transport response: %w", err)
	}
	return result.Result, nil
}
