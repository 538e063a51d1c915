package core

import (
	"context"
	"testing"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

func TestNewClient_DefaultDependencies(t *testing.T) {
	client, err := NewClient(Config{}, WithConfigProvider(NewEnvConfigProvider(emptyEnv)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	deps := client.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.MetricsRecorder == nil {
		t.Fatalf("expected default metrics recorder")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	cfg := client.Config()
	if cfg.ServiceName != DefaultServiceName {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.WebhookBodyField != DefaultWebhookBodyField {
		t.Fatalf("expected default body field, got %q", cfg.WebhookBodyField)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("expected default api base url, got %q", cfg.APIBaseURL)
	}
	if cfg.HasCredentials() {
		t.Fatalf("expected no credentials by default")
	}
}

func TestNewClient_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{ServiceName: "resolved", AccessToken: "tok"}}
	metrics := &captureMetricsRecorder{}
	transport := &fakeTransport{}

	client, err := NewClient(Config{ServiceName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
		WithMetricsRecorder(metrics),
		WithTransport(transport),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	deps := client.Dependencies()
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver")
	}
	if deps.MetricsRecorder != metrics {
		t.Fatalf("expected custom metrics recorder")
	}
	if deps.Transport != transport {
		t.Fatalf("expected custom transport")
	}
	if got := client.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected resolved config, got %q", got)
	}
}

func TestNewClient_ConfigLayeringPrecedence(t *testing.T) {
	env := envFrom(map[string]string{
		EnvAccessToken:   "env-token",
		EnvWebhookSecret: "env-secret",
		EnvVerifyToken:   "   ",
	})

	client, err := NewClient(Config{
		AccessToken: "runtime-token",
		VerifyToken: "runtime-verify",
		APIBaseURL:  "http://graph.test/v9",
		ServiceName: "bot",
	}, WithConfigProvider(NewEnvConfigProvider(env)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cfg := client.Config()
	if cfg.AccessToken != "env-token" {
		t.Fatalf("expected environment token to override runtime value, got %q", cfg.AccessToken)
	}
	if cfg.WebhookSecret != "env-secret" {
		t.Fatalf("expected environment secret, got %q", cfg.WebhookSecret)
	}
	if cfg.VerifyToken != "runtime-verify" {
		t.Fatalf("expected blank environment value to be ignored, got %q", cfg.VerifyToken)
	}
	if cfg.ServiceName != "bot" {
		t.Fatalf("expected runtime service name, got %q", cfg.ServiceName)
	}
	if cfg.WebhookBodyField != DefaultWebhookBodyField {
		t.Fatalf("expected default body field, got %q", cfg.WebhookBodyField)
	}
	if cfg.APIBaseURL != "http://graph.test/v9/" {
		t.Fatalf("expected normalized base url, got %q", cfg.APIBaseURL)
	}
}

func TestCfgxConfigProvider_LoadsRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"access_token":       "raw-token",
		"webhook_body_field": "payload",
	}})

	cfg, err := provider.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessToken != "raw-token" || cfg.WebhookBodyField != "payload" {
		t.Fatalf("unexpected loaded config %#v", cfg)
	}
	if cfg.ServiceName != "" {
		t.Fatalf("expected partial config without defaults, got %q", cfg.ServiceName)
	}
}

func TestGoOptionsResolver_RejectsInvalidMerge(t *testing.T) {
	defaults := DefaultConfig()
	defaults.APIBaseURL = ""
	if _, err := (GoOptionsResolver{}).Resolve(defaults, Config{}, Config{}); err == nil {
		t.Fatalf("expected validation error for missing api base url")
	}
}

func TestEnvRawConfigLoader_MapsVariables(t *testing.T) {
	loader := EnvRawConfigLoader{Lookup: envFrom(map[string]string{
		EnvAccessToken:   " tok ",
		EnvVerifyToken:   "verify",
		EnvWebhookSecret: "",
	})}

	raw, err := loader.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	if raw["access_token"] != "tok" {
		t.Fatalf("expected trimmed access token, got %#v", raw["access_token"])
	}
	if raw["verify_token"] != "verify" {
		t.Fatalf("expected verify token, got %#v", raw["verify_token"])
	}
	if _, ok := raw["webhook_secret"]; ok {
		t.Fatalf("expected empty secret to be skipped")
	}
}
