package pushgw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"household-med-tracker/internal/platform/httpclient"
)

var (
	ErrPushNotConfigured = errors.New("push gateway client not configured")
	ErrPushUnauthorized  = errors.New("push gateway unauthorized")
	ErrPushUpstream      = errors.New("push gateway upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

// Client habla con el gateway de push del que este servicio delega la
// entrega real (APNs/FCM/web push quedan del otro lado).
type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type pushRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Push encola una notificación para un usuario.
func (c *Client) Push(ctx context.Context, userID, title, body string) error {
	if !c.IsConfigured() {
		return ErrPushNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("userID required")
	}

	const pushPath = "/v1/notifications"

	headers := map[string]string{c.apiKeyHeader: c.apiKey}
	in := pushRequest{UserID: userID, Title: title, Body: body}

	err := c.http.DoJSON(ctx, http.MethodPost, pushPath, headers, in, nil)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) {
			if he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden {
				return ErrPushUnauthorized
			}
			return fmt.Errorf("%w: status=%d", ErrPushUpstream, he.StatusCode)
		}
		return fmt.Errorf("%w: %v", ErrPushUpstream, err)
	}
	return nil
}
