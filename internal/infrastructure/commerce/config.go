package commerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// Config holds configuration for the external commerce platform API
type Config struct {
	// APIBaseURL is the base URL of the commerce platform admin API
	APIBaseURL string
	// AccessToken authenticates admin API requests
	AccessToken string
	// WebhookSecret is the shared secret for webhook signature verification
	WebhookSecret string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize is the page size used when listing customers
	PageSize int
}

// Errors for commerce configuration
var (
	ErrConfigMissingBaseURL       = errors.New("commerce: API base URL is required")
	ErrConfigMissingAccessToken   = errors.New("commerce: access token is required")
	ErrConfigMissingWebhookSecret = errors.New("commerce: webhook secret is required")
)

// NewConfig creates a new commerce configuration with defaults
func NewConfig(apiBaseURL, accessToken, webhookSecret string) *Config {
	return &Config{
		APIBaseURL:     apiBaseURL,
		AccessToken:    accessToken,
		WebhookSecret:  webhookSecret,
		TimeoutSeconds: 30,
		PageSize:       250,
	}
}

// Validate validates the commerce configuration
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.WebhookSecret == "" {
		return ErrConfigMissingWebhookSecret
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PageSize <= 0 {
		c.PageSize = 250
	}
	return nil
}

// SignWebhook computes the webhook signature over a raw request body.
// The platform signs with HMAC-SHA256 over the body and base64-encodes
// the digest.
func (c *Config) SignWebhook(body []byte) string {
	h := hmac.New(sha256.New, []byte(c.WebhookSecret))
	h.Write(body)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature checks a header-supplied signature against the
// raw request body using a constant-time comparison.
func (c *Config) VerifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := c.SignWebhook(body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
