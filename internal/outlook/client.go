package outlook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jiangwan/chrome-outlook-calendar/internal/security"
)

// DefaultBaseURL is the Outlook REST v2 endpoint root.
const DefaultBaseURL = "https://outlook.office.com/api/v2.0"

// APIError is a non-2xx answer from the REST endpoint. Status 401 is the
// authorization-failure signal the retry layer keys on.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("outlook api request failed: %s", e.Status)
}

// IsAuthError reports whether the failure means the token is invalid or
// expired.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Client is a thin bearer-token client for the Outlook calendar REST API.
type Client struct {
	http    *http.Client
	baseURL string
	now     func() time.Time
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    security.NewHTTPClient(0),
		baseURL: baseURL,
		now:     time.Now,
	}
}

// get performs one authenticated GET and returns the raw body.
func (c *Client) get(ctx context.Context, accessToken, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}
