package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Client talks to the upstream commerce API. All responses use the uniform
// {success, data, message} envelope; non-2xx statuses become ErrRejected
// values rather than raw HTTP errors, except transport failures which become
// ErrNetwork.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new commerce API client. authToken is the shopper's
// bearer token, forwarded as-is; an empty token makes guest calls.
func NewClient(cfg config.UpstreamConfig, authToken string, logger *zap.Logger) *Client {
	// Normalize base URL - strip trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// envelope is the uniform response wrapper of the upstream API.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// do executes one round trip and decodes the envelope's data into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}, headers map[string]string) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &errors.ErrNetwork{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ErrNetwork{Op: method + " " + path, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		// Intermediaries (load balancers, gateways) answer error statuses
		// with their own non-envelope bodies; treat those as network faults.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &errors.ErrNetwork{
				Op:  method + " " + path,
				Err: fmt.Errorf("status %d with undecodable body: %w", resp.StatusCode, err),
			}
		}
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("upstream API error: status %d", resp.StatusCode)
		}
		c.logger.Warn("upstream request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return &errors.ErrRejected{
			Message:   message,
			Inventory: isInventoryShortage(resp.StatusCode, message),
		}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}

// isInventoryShortage recognizes the distinguished inventory-shortage
// rejection: HTTP 400 with an inventory-related message.
func isInventoryShortage(status int, message string) bool {
	if status != http.StatusBadRequest {
		return false
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "inventory") || strings.Contains(lower, "stock")
}
