package inbound

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-messenger/core"
)

// Kind names a notification emitted for a webhook delivery.
type Kind string

const (
	KindRequest  Kind = "request"
	KindEntry    Kind = "entry"
	KindEvent    Kind = "event"
	KindMessages Kind = "messages"
)

type RequestHandler func(ctx context.Context, req core.WebhookRequest) error

type EntryHandler func(ctx context.Context, entry core.WebhookEntry, req core.WebhookRequest) error

type EventHandler func(ctx context.Context, event core.MessagingEvent, req core.WebhookRequest) error

// MessagesHandler receives text messages. action is always
// core.MessageActionCreated for now.
type MessagesHandler func(ctx context.Context, action string, msg core.Message, req core.WebhookRequest) error

// Unsubscribe removes a handler. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription[H any] struct {
	id      uint64
	handler H
}

// Registry keeps notification handlers in registration order. The zero value
// is ready to use.
type Registry struct {
	mu       sync.RWMutex
	nextID   uint64
	request  []subscription[RequestHandler]
	entry    []subscription[EntryHandler]
	event    []subscription[EventHandler]
	messages []subscription[MessagesHandler]
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) OnRequest(handler RequestHandler) (Unsubscribe, error) {
	if r == nil {
		return nil, inboundInternal("inbound: registry is nil", nil)
	}
	if handler == nil {
		return nil, inboundBadInput("inbound: request handler is nil", map[string]any{"notification": string(KindRequest)})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	r.request = append(r.request, subscription[RequestHandler]{id: id, handler: handler})
	return r.unsubscriber(func() { r.request = removeSubscription(r.request, id) }), nil
}

func (r *Registry) OnEntry(handler EntryHandler) (Unsubscribe, error) {
	if r == nil {
		return nil, inboundInternal("inbound: registry is nil", nil)
	}
	if handler == nil {
		return nil, inboundBadInput("inbound: entry handler is nil", map[string]any{"notification": string(KindEntry)})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	r.entry = append(r.entry, subscription[EntryHandler]{id: id, handler: handler})
	return r.unsubscriber(func() { r.entry = removeSubscription(r.entry, id) }), nil
}

func (r *Registry) OnEvent(handler EventHandler) (Unsubscribe, error) {
	if r == nil {
		return nil, inboundInternal("inbound: registry is nil", nil)
	}
	if handler == nil {
		return nil, inboundBadInput("inbound: event handler is nil", map[string]any{"notification": string(KindEvent)})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	r.event = append(r.event, subscription[EventHandler]{id: id, handler: handler})
	return r.unsubscriber(func() { r.event = removeSubscription(r.event, id) }), nil
}

func (r *Registry) OnMessages(handler MessagesHandler) (Unsubscribe, error) {
	if r == nil {
		return nil, inboundInternal("inbound: registry is nil", nil)
	}
	if handler == nil {
		return nil, inboundBadInput("inbound: messages handler is nil", map[string]any{"notification": string(KindMessages)})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	r.messages = append(r.messages, subscription[MessagesHandler]{id: id, handler: handler})
	return r.unsubscriber(func() { r.messages = removeSubscription(r.messages, id) }), nil
}

// Len reports how many handlers are registered for kind.
func (r *Registry) Len(kind Kind) int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch kind {
	case KindRequest:
		return len(r.request)
	case KindEntry:
		return len(r.entry)
	case KindEvent:
		return len(r.event)
	case KindMessages:
		return len(r.messages)
	default:
		return 0
	}
}

func (r *Registry) EmitRequest(ctx context.Context, req core.WebhookRequest) error {
	handlers := snapshot(r, func() []subscription[RequestHandler] { return r.request })
	var errs []error
	for index, sub := range handlers {
		if err := invoke(KindRequest, index, func() error { return sub.handler(ctx, req) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) EmitEntry(ctx context.Context, entry core.WebhookEntry, req core.WebhookRequest) error {
	handlers := snapshot(r, func() []subscription[EntryHandler] { return r.entry })
	var errs []error
	for index, sub := range handlers {
		if err := invoke(KindEntry, index, func() error { return sub.handler(ctx, entry, req) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) EmitEvent(ctx context.Context, event core.MessagingEvent, req core.WebhookRequest) error {
	handlers := snapshot(r, func() []subscription[EventHandler] { return r.event })
	var errs []error
	for index, sub := range handlers {
		if err := invoke(KindEvent, index, func() error { return sub.handler(ctx, event, req) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) EmitMessages(ctx context.Context, action string, msg core.Message, req core.WebhookRequest) error {
	handlers := snapshot(r, func() []subscription[MessagesHandler] { return r.messages })
	var errs []error
	for index, sub := range handlers {
		if err := invoke(KindMessages, index, func() error { return sub.handler(ctx, action, msg, req) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) allocateID() uint64 {
	r.nextID++
	return r.nextID
}

func (r *Registry) unsubscriber(remove func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			remove()
		})
	}
}

func snapshot[H any](r *Registry, current func() []subscription[H]) []subscription[H] {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := current()
	out := make([]subscription[H], len(items))
	copy(out, items)
	return out
}

func removeSubscription[H any](items []subscription[H], id uint64) []subscription[H] {
	for index, item := range items {
		if item.id == id {
			out := make([]subscription[H], 0, len(items)-1)
			out = append(out, items[:index]...)
			return append(out, items[index+1:]...)
		}
	}
	return items
}

func invoke(kind Kind, index int, call func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = handlerFailed(fmt.Errorf("panic: %v", recovered), kind, index)
		}
	}()
	if callErr := call(); callErr != nil {
		return handlerFailed(callErr, kind, index)
	}
	return nil
}
