package lipia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Lipia API base URL.
const DefaultBaseURL = "https://lipia-api.kreativelabske.com/api/v2"

// requestTimeout bounds the outbound STK push; slow mobile networks are
// common, anything beyond this is treated as gateway unavailability.
const requestTimeout = 10 * time.Second

// Client is a minimal HTTP client for the Lipia payment gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	debug      bool
}

// NewClient constructs a new Lipia client with sane defaults.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		debug:      os.Getenv("ENV") == "development",
	}
}

// StkPush pushes a mobile-money charge prompt to the customer's handset.
// The gateway answers synchronously with an acknowledgement; the actual
// payment result arrives later on the callback URL.
func (c *Client) StkPush(ctx context.Context, req *StkPushRequest) (*StkPushResponse, error) {
	var resp StkPushResponse
	if err := c.doRequest(ctx, "/payments/stk-push", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest performs the HTTP POST to the Lipia API with JSON payloads and
// decodes the JSON response into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", c.baseURL+endpoint).
			RawJSON("request", payload).
			Msg("[LIPIA] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[LIPIA] Incoming response")
	}

	// Lipia encapsulates failure in the JSON success flag and often keeps
	// HTTP 200, so decode regardless of status code.
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
