package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IdentityClient verifies tokens against the external identity provider's
// introspection endpoint.
type IdentityClient struct {
	VerifyURL string
	HTTP      *http.Client
}

func NewIdentityClient(verifyURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		VerifyURL: verifyURL,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

func (c *IdentityClient) Verify(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.VerifyURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider rejected token: status %d", resp.StatusCode)
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}
	if body.UserID == "" {
		return "", fmt.Errorf("identity response carried no user id")
	}
	return body.UserID, nil
}
