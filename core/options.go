package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type clientBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	transport       TransportAdapter
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	now             func() time.Time
}

type Option func(*clientBuilder)

func WithLogger(logger Logger) Option {
	return func(b *clientBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *clientBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *clientBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithTransport(adapter TransportAdapter) Option {
	return func(b *clientBuilder) {
		b.transport = adapter
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *clientBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *clientBuilder) {
		b.optionsResolver = resolver
	}
}

// WithClock overrides the clock used to stamp sent messages.
func WithClock(now func() time.Time) Option {
	return func(b *clientBuilder) {
		b.now = now
	}
}

func defaultClientBuilder(runtime Config) clientBuilder {
	loggerProvider, logger := glog.Resolve(DefaultServiceName, nil, nil)
	return clientBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		configProvider:  NewEnvConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// EnvRawConfigLoader reads the messenger environment variables. Unset or
// blank variables are left out of the raw map so they do not shadow lower
// layers.
type EnvRawConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	keys := map[string]string{
		EnvAccessToken:   "access_token",
		EnvVerifyToken:   "verify_token",
		EnvWebhookSecret: "webhook_secret",
	}
	raw := map[string]any{}
	for env, field := range keys {
		value, ok := lookup(env)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		raw[field] = strings.TrimSpace(value)
	}
	return raw, nil
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// NewStaticRawConfigLoader serves a fixed raw map, mostly useful in tests
// and for hosts that already hold their configuration in memory.
func NewStaticRawConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

// NewEnvConfigProvider builds the environment layer. A nil lookup reads the
// process environment.
func NewEnvConfigProvider(lookup func(string) (string, bool)) *CfgxConfigProvider {
	return NewCfgxConfigProvider(EnvRawConfigLoader{Lookup: lookup})
}

// Load returns a partial Config holding only the values present in the raw
// source. Validation happens after the layers are merged.
func (p *CfgxConfigProvider) Load(ctx context.Context) (Config, error) {
	if p == nil {
		return Config{}, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw, cfgx.WithDefaults(Config{}))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, runtime Config, environment Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	runtimeLayer := configToLayerMap(runtime, false)
	environmentLayer := configToLayerMap(environment, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 10),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
		opts.NewLayer(
			opts.NewScope("environment", 20),
			environmentLayer,
			opts.WithSnapshotID[map[string]any]("environment"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	resolved = resolved.normalized()
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	set := func(key string, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = strings.TrimSpace(value)
		}
	}
	set("service_name", cfg.ServiceName)
	set("access_token", cfg.AccessToken)
	set("verify_token", cfg.VerifyToken)
	set("webhook_secret", cfg.WebhookSecret)
	set("webhook_body_field", cfg.WebhookBodyField)
	set("api_base_url", cfg.APIBaseURL)
	return layer
}
