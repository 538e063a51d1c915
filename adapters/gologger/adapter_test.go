package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestResolveDeterministicFallback(t *testing.T) {
	loggerOnly := &capturingLogger{id: "logger"}
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	var resolvedProvider glog.LoggerProvider
	_, resolved := Resolve("messenger", provider, loggerOnly)
	got := resolved.(*capturingLogger)
	if got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	resolvedProvider, resolved = Resolve("messenger", nil, loggerOnly)
	got = resolved.(*capturingLogger)
	if got.id != "logger" {
		t.Fatalf("expected direct logger when provider is nil, got %q", got.id)
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("messenger", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestResolveComponentNaming(t *testing.T) {
	if got := ComponentName("webhooks"); got != "messenger.webhooks" {
		t.Fatalf("unexpected component name %q", got)
	}
	if got := ComponentName("  "); got != Root {
		t.Fatalf("expected root name for blank component, got %q", got)
	}

	providerLogger := &capturingLogger{id: "provider"}
	provider := &namingProvider{capturingProvider: capturingProvider{logger: providerLogger}}

	_, logger := ResolveComponent("client", provider, nil)
	logger.Info("hello", "k", "v")
	if provider.requested != "messenger.client" {
		t.Fatalf("expected provider lookup by component name, got %q", provider.requested)
	}
	captured := providerLogger.lastInfo
	if captured.msg != "hello" || captured.args[0] != "k" || captured.args[1] != "v" {
		t.Fatalf("unexpected captured call %#v", captured)
	}

	_, fallback := ResolveComponent("client", nil, nil)
	if fallback == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

type namingProvider struct {
	capturingProvider
	requested string
}

func (p *namingProvider) GetLogger(name string) glog.Logger {
	p.requested = name
	return p.capturingProvider.GetLogger(name)
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger *capturingLogger
}

func (p *capturingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id       string
	lastInfo infoCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
