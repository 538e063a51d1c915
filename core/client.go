package core

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Client talks to the Graph API. It is safe for concurrent use; the access
// token may be rotated while calls are in flight.
type Client struct {
	config          atomic.Pointer[Config]
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	transport       TransportAdapter
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	now             func() time.Time
}

type ClientDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	Transport       TransportAdapter
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
}

// NewClient resolves the final configuration (defaults, then cfg, then the
// environment) and builds a client. Missing tokens are not an error here.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	name := strings.TrimSpace(builder.runtimeConfig.ServiceName)
	if name == "" {
		name = DefaultServiceName
	}
	provider, logger := glog.Resolve(name, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewEnvConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	environment, err := builder.configProvider.Load(context.Background())
	if err != nil {
		return nil, WrapConfigError(err, "messenger: load environment config", nil)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, builder.runtimeConfig, environment)
	if err != nil {
		return nil, WrapConfigError(err, "messenger: resolve config", nil)
	}

	client := &Client{
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		transport:       builder.transport,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		now:             builder.now,
	}
	client.config.Store(&finalConfig)

	if !finalConfig.HasCredentials() {
		LogWithFields(context.Background(), logger, "warn", "messenger client created without credentials", map[string]any{
			"has_access_token": finalConfig.AccessToken != "",
			"has_verify_token": finalConfig.VerifyToken != "",
		})
	}
	return client, nil
}

// Config returns the current configuration snapshot.
func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	if current := c.config.Load(); current != nil {
		return *current
	}
	return Config{}
}

// RotateToken swaps in a new access token. Calls already in flight keep the
// snapshot they started with.
func (c *Client) RotateToken(token string) error {
	if c == nil {
		return NewInternalError("messenger: client is nil", nil)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return NewRequestError("messenger: access token is required", map[string]any{"field": "access_token"})
	}
	for {
		current := c.config.Load()
		next := Config{}
		if current != nil {
			next = *current
		}
		next.AccessToken = token
		if c.config.CompareAndSwap(current, &next) {
			break
		}
	}
	LogWithFields(context.Background(), c.logger, "info", "messenger access token rotated", nil)
	return nil
}

func (c *Client) Logger() Logger {
	if c == nil {
		return glog.Nop()
	}
	return c.logger
}

func (c *Client) Dependencies() ClientDependencies {
	if c == nil {
		return ClientDependencies{}
	}
	return ClientDependencies{
		Logger:          c.logger,
		LoggerProvider:  c.loggerProvider,
		MetricsRecorder: c.metricsRecorder,
		Transport:       c.transport,
		ConfigProvider:  c.configProvider,
		OptionsResolver: c.optionsResolver,
	}
}
