package inbound

import (
	"context"
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messenger/core"
)

func TestRegistry_HandlerFailureReturnsRichError(t *testing.T) {
	registry := NewRegistry()
	_, _ = registry.OnEvent(func(context.Context, core.MessagingEvent, core.WebhookRequest) error {
		return errors.New("downstream unavailable")
	})

	err := registry.EmitEvent(context.Background(), core.MessagingEvent{}, core.WebhookRequest{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryOperation {
		t.Fatalf("expected operation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.ErrorInternal, rich.TextCode)
	}
	if rich.Metadata["notification"] != string(KindEvent) {
		t.Fatalf("expected notification metadata, got %#v", rich.Metadata)
	}
}

func TestRegistry_NilReturnsRichError(t *testing.T) {
	var registry *Registry
	_, err := registry.OnRequest(func(context.Context, core.WebhookRequest) error { return nil })

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d code, got %d", http.StatusInternalServerError, rich.Code)
	}
}
