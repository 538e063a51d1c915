package core

import (
	"fmt"
	"strings"
)

const (
	DefaultAPIBaseURL       = "https://graph.facebook.com/v2.6/"
	DefaultWebhookBodyField = "body"
	DefaultServiceName      = "messenger"
)

const (
	EnvAccessToken   = "TOKEN"
	EnvVerifyToken   = "VERIFY_TOKEN"
	EnvWebhookSecret = "WEBHOOK_SECRET"
)

type Config struct {
	ServiceName      string `koanf:"service_name" mapstructure:"service_name"`
	AccessToken      string `koanf:"access_token" mapstructure:"access_token"`
	VerifyToken      string `koanf:"verify_token" mapstructure:"verify_token"`
	WebhookSecret    string `koanf:"webhook_secret" mapstructure:"webhook_secret"`
	WebhookBodyField string `koanf:"webhook_body_field" mapstructure:"webhook_body_field"`
	APIBaseURL       string `koanf:"api_base_url" mapstructure:"api_base_url"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:      DefaultServiceName,
		WebhookBodyField: DefaultWebhookBodyField,
		APIBaseURL:       DefaultAPIBaseURL,
	}
}

// Validate checks the fields required to build a client. Tokens are not
// required here; they are enforced on every outbound call and webhook.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.WebhookBodyField) == "" {
		return fmt.Errorf("core: webhook_body_field is required")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("core: api_base_url is required")
	}
	return nil
}

// HasCredentials reports whether both the access token and the verify token
// are configured.
func (c Config) HasCredentials() bool {
	return strings.TrimSpace(c.AccessToken) != "" && strings.TrimSpace(c.VerifyToken) != ""
}

func (c Config) normalized() Config {
	c.ServiceName = strings.TrimSpace(c.ServiceName)
	c.AccessToken = strings.TrimSpace(c.AccessToken)
	c.VerifyToken = strings.TrimSpace(c.VerifyToken)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.WebhookBodyField = strings.TrimSpace(c.WebhookBodyField)
	c.APIBaseURL = strings.TrimSpace(c.APIBaseURL)
	if c.APIBaseURL != "" && !strings.HasSuffix(c.APIBaseURL, "/") {
		c.APIBaseURL += "/"
	}
	return c
}
