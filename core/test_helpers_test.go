package core

import (
	"context"
	"sync"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

func emptyEnv(string) (string, bool) {
	return "", false
}

func envFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

type fakeTransport struct {
	mu       sync.Mutex
	requests []TransportRequest
	response TransportResponse
	err      error
}

func (*fakeTransport) Kind() string { return "fake" }

func (f *fakeTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return TransportResponse{}, f.err
	}
	return f.response, nil
}

func (f *fakeTransport) calls() []TransportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]TransportRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func jsonResponse(status int, body string) TransportResponse {
	return TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

func testConfig() Config {
	return Config{AccessToken: "tok", VerifyToken: "verify"}
}

func newTestClient(cfg Config, transport TransportAdapter, opts ...Option) (*Client, error) {
	base := []Option{
		WithConfigProvider(NewEnvConfigProvider(emptyEnv)),
		WithLogger(stubLogger{}),
		WithTransport(transport),
	}
	return NewClient(cfg, append(base, opts...)...)
}
