package webhooks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/inbound"
)

type recordedResponse struct {
	status int
	body   string
}

type recordingResponder struct {
	mu        sync.Mutex
	responses []recordedResponse
}

func (r *recordingResponder) Respond(status int, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, recordedResponse{status: status, body: body})
	return nil
}

func (r *recordingResponder) snapshot() []recordedResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedResponse, len(r.responses))
	copy(out, r.responses)
	return out
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu      *sync.Mutex
	records *[]capturedLog
	fields  map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, fields: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) core.Logger {
	merged := map[string]any{}
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, fields: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg) }

func (l *captureLogger) WithContext(context.Context) core.Logger { return l }

func (l *captureLogger) record(level string, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: l.fields})
}

func (l *captureLogger) find(msg string) (capturedLog, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, record := range *l.records {
		if record.msg == msg {
			return record, true
		}
	}
	return capturedLog{}, false
}

type counterRecorder struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (r *counterRecorder) IncCounter(_ context.Context, name string, value int64, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int64{}
	}
	r.counts[name] += value
}

func (*counterRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (r *counterRecorder) count(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// notificationLog subscribes to every notification kind and records them in
// arrival order.
type notificationLog struct {
	mu    sync.Mutex
	items []string
	msgs  []core.Message
}

func subscribeAll(t *testing.T, registry *inbound.Registry) *notificationLog {
	t.Helper()
	log := &notificationLog{}
	add := func(item string) {
		log.mu.Lock()
		defer log.mu.Unlock()
		log.items = append(log.items, item)
	}
	if _, err := registry.OnRequest(func(_ context.Context, req core.WebhookRequest) error {
		add("request")
		return nil
	}); err != nil {
		t.Fatalf("subscribe request: %v", err)
	}
	if _, err := registry.OnEntry(func(_ context.Context, entry core.WebhookEntry, _ core.WebhookRequest) error {
		add("entry")
		return nil
	}); err != nil {
		t.Fatalf("subscribe entry: %v", err)
	}
	if _, err := registry.OnEvent(func(_ context.Context, event core.MessagingEvent, _ core.WebhookRequest) error {
		add("event:" + event.Sender.ID)
		return nil
	}); err != nil {
		t.Fatalf("subscribe event: %v", err)
	}
	if _, err := registry.OnMessages(func(_ context.Context, action string, msg core.Message, _ core.WebhookRequest) error {
		log.mu.Lock()
		defer log.mu.Unlock()
		log.items = append(log.items, fmt.Sprintf("messages:%s:%s", action, msg.ID))
		log.msgs = append(log.msgs, msg)
		return nil
	}); err != nil {
		t.Fatalf("subscribe messages: %v", err)
	}
	return log
}

func (l *notificationLog) joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.items, ",")
}

func (l *notificationLog) messages() []core.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Message(nil), l.msgs...)
}

func dispatcherConfig() core.Config {
	cfg := core.DefaultConfig()
	cfg.AccessToken = "tok"
	cfg.VerifyToken = "verify"
	return cfg
}

func postRequest(body any, headers map[string]string) core.WebhookRequest {
	if headers == nil {
		headers = map[string]string{}
	}
	return core.WebhookRequest{
		Method:  "POST",
		URL:     "/webhook",
		Headers: headers,
		Fields:  map[string]any{core.DefaultWebhookBodyField: body},
	}
}
