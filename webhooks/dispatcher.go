package webhooks

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messenger/core"
	"github.com/goliatone/go-messenger/inbound"
	"github.com/google/uuid"
)

const (
	AckBody               = "OK"
	InvalidTokenBody      = "invalid validation token"
	VerifyTokenParam      = "hub.verify_token"
	ChallengeParam        = "hub.challenge"
	deliveryIDField       = "delivery_id"
	webhookMetricPrefix   = "messenger.webhook."
	webhookMetricSuffix   = ".total"
	webhookLoggerName     = "messenger.webhooks"
	outcomeInvalid        = "invalid"
	outcomeVerified       = "verified"
	outcomeVerifyRejected = "verification_rejected"
	outcomeUnsupported    = "unsupported_method"
	outcomeAuthFailed     = "auth_failed"
	outcomeConfigMismatch = "config_mismatch"
	outcomeParseFailed    = "parse_failed"
	outcomeProcessed      = "processed"
	outcomeOversized      = "oversized"
)

// ConfigSource supplies the configuration snapshot for each request.
// *core.Client satisfies it, so a rotated token is picked up immediately.
type ConfigSource interface {
	Config() core.Config
}

type ConfigFunc func() core.Config

func (f ConfigFunc) Config() core.Config {
	return f()
}

func StaticConfig(cfg core.Config) ConfigSource {
	return ConfigFunc(func() core.Config { return cfg })
}

// Dispatcher classifies inbound webhook requests, acknowledges them and fans
// deliveries out to the subscriber registry.
type Dispatcher struct {
	config        ConfigSource
	subscribers   *inbound.Registry
	logger        core.Logger
	metrics       core.MetricsRecorder
	newDeliveryID func() string
	now           func() time.Time
}

type Option func(*Dispatcher)

func WithLogger(logger core.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(d *Dispatcher) {
		d.metrics = recorder
	}
}

func WithDeliveryIDGenerator(generate func() string) Option {
	return func(d *Dispatcher) {
		d.newDeliveryID = generate
	}
}

// WithClock sets the clock used when a message carries no timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(config ConfigSource, subscribers *inbound.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		config:        config,
		subscribers:   subscribers,
		newDeliveryID: uuid.NewString,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(d)
	}
	if d.logger == nil {
		_, d.logger = glog.Resolve(webhookLoggerName, nil, nil)
	}
	d.logger = glog.Ensure(d.logger)
	if d.metrics == nil {
		d.metrics = core.NopMetricsRecorder{}
	}
	if d.subscribers == nil {
		d.subscribers = inbound.NewRegistry()
	}
	if d.newDeliveryID == nil {
		d.newDeliveryID = uuid.NewString
	}
	if d.now == nil {
		d.now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func (d *Dispatcher) Subscribers() *inbound.Registry {
	if d == nil {
		return nil
	}
	return d.subscribers
}

func (d *Dispatcher) Config() core.Config {
	if d == nil || d.config == nil {
		return core.Config{}
	}
	return d.config.Config()
}

// Dispatch handles one webhook request. It never fails: every problem is
// logged and, when a responder is present, the sender still gets a 200.
// Deliveries are acknowledged before they are authenticated or parsed.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.WebhookRequest, responder Responder) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.DeliveryID) == "" {
		req.DeliveryID = d.newDeliveryID()
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	fields := map[string]any{
		deliveryIDField: req.DeliveryID,
		"method":        method,
	}
	cfg := d.Config()

	if reason := invalidReason(req, cfg); reason != "" {
		fields["reason"] = reason
		d.acknowledge(ctx, responder, http.StatusOK, AckBody, fields)
		d.finish(ctx, outcomeInvalid, "warn", "webhook request rejected", fields)
		return
	}

	switch {
	case method == http.MethodGet && responder != nil:
		d.verify(ctx, req, cfg, responder, fields)
	case method == http.MethodPost:
		d.acknowledge(ctx, responder, http.StatusOK, AckBody, fields)
		d.deliver(ctx, req, cfg, fields)
	default:
		fields["reason"] = "unsupported method"
		d.acknowledge(ctx, responder, http.StatusOK, AckBody, fields)
		d.finish(ctx, outcomeUnsupported, "warn", "webhook request rejected", fields)
	}
}

func invalidReason(req core.WebhookRequest, cfg core.Config) string {
	switch {
	case strings.TrimSpace(req.Method) == "":
		return "method is missing"
	case req.Headers == nil:
		return "headers are missing"
	case !hasField(req, cfg.WebhookBodyField):
		return "body field is missing"
	case strings.TrimSpace(cfg.AccessToken) == "" || strings.TrimSpace(cfg.VerifyToken) == "":
		return "access token and verify token are required"
	default:
		return ""
	}
}

func hasField(req core.WebhookRequest, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, ok := req.Field(name)
	return ok
}

func (d *Dispatcher) verify(
	ctx context.Context,
	req core.WebhookRequest,
	cfg core.Config,
	responder Responder,
	fields map[string]any,
) {
	query := url.Values{}
	if parsed, err := url.Parse(req.URL); err == nil {
		query = parsed.Query()
	}
	token := query.Get(VerifyTokenParam)
	if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.VerifyToken)) != 1 {
		d.acknowledge(ctx, responder, http.StatusOK, InvalidTokenBody, fields)
		d.finish(ctx, outcomeVerifyRejected, "warn", "webhook verification token mismatch", fields)
		return
	}
	d.acknowledge(ctx, responder, http.StatusOK, query.Get(ChallengeParam), fields)
	d.finish(ctx, outcomeVerified, "info", "webhook verification accepted", fields)
}

func (d *Dispatcher) deliver(ctx context.Context, req core.WebhookRequest, cfg core.Config, fields map[string]any) {
	value, _ := req.Field(cfg.WebhookBodyField)
	body, err := resolveBody(value, req.RawBody)
	if err != nil {
		fields["error"] = err.Error()
		d.finish(ctx, outcomeParseFailed, "error", "webhook body rejected", fields)
		return
	}

	signature := req.Header(core.SignatureHeader)
	secret := cfg.WebhookSecret
	switch {
	case signature != "" && secret != "":
		if _, err := Authenticate(secret, signature, body.authPayload()); err != nil {
			fields["error"] = err.Error()
			d.finish(ctx, outcomeAuthFailed, "error", "webhook signature rejected", fields)
			return
		}
		fields["authenticated"] = true
	case signature != "" || secret != "":
		fields["has_signature"] = signature != ""
		fields["has_secret"] = secret != ""
		d.finish(ctx, outcomeConfigMismatch, "warn", "webhook signature and secret configuration mismatch", fields)
		return
	default:
		fields["authenticated"] = false
	}

	envelope, err := body.envelope()
	if err != nil {
		fields["error"] = err.Error()
		d.finish(ctx, outcomeParseFailed, "error", "webhook body rejected", fields)
		return
	}
	fields["object"] = envelope.Object
	fields["entries"] = len(envelope.Entry)
	d.process(ctx, req, envelope, fields)
	d.finish(ctx, outcomeProcessed, "info", "webhook delivery processed", fields)
}

func (d *Dispatcher) process(
	ctx context.Context,
	req core.WebhookRequest,
	envelope core.WebhookEnvelope,
	fields map[string]any,
) {
	notify := func(err error, kind inbound.Kind) {
		if err == nil {
			return
		}
		logFields := map[string]any{
			deliveryIDField: req.DeliveryID,
			"notification":  string(kind),
			"error":         err.Error(),
		}
		core.LogWithFields(ctx, d.logger, "error", "webhook subscriber failed", logFields)
	}

	notify(d.subscribers.EmitRequest(ctx, req), inbound.KindRequest)
	events, messages := 0, 0
	for _, entry := range envelope.Entry {
		notify(d.subscribers.EmitEntry(ctx, entry, req), inbound.KindEntry)
		for _, event := range entry.Messaging {
			events++
			notify(d.subscribers.EmitEvent(ctx, event, req), inbound.KindEvent)
			if !event.HasText() {
				continue
			}
			messages++
			msg := core.Message{
				ID:       event.Message.MID,
				Text:     event.Message.Text,
				PersonID: event.Sender.ID,
				Created:  d.messageCreated(event),
			}
			notify(d.subscribers.EmitMessages(ctx, core.MessageActionCreated, msg, req), inbound.KindMessages)
		}
	}
	fields["events"] = events
	fields["messages"] = messages
}

func (d *Dispatcher) messageCreated(event core.MessagingEvent) string {
	if event.Message != nil && !event.Message.Timestamp.IsZero() {
		return event.Message.Timestamp.ISO8601()
	}
	if !event.Timestamp.IsZero() {
		return event.Timestamp.ISO8601()
	}
	return core.FormatTimestamp(d.now())
}

func (d *Dispatcher) acknowledge(ctx context.Context, responder Responder, status int, body string, fields map[string]any) {
	if responder == nil {
		return
	}
	if err := responder.Respond(status, body); err != nil {
		logFields := map[string]any{
			deliveryIDField: fields[deliveryIDField],
			"status":        status,
			"error":         err.Error(),
		}
		core.LogWithFields(ctx, d.logger, "warn", "webhook response failed", logFields)
	}
}

func (d *Dispatcher) finish(ctx context.Context, outcome string, level string, message string, fields map[string]any) {
	fields["outcome"] = outcome
	d.metrics.IncCounter(ctx, webhookMetricPrefix+outcome+webhookMetricSuffix, 1, map[string]string{
		"outcome": outcome,
	})
	core.LogWithFields(ctx, d.logger, level, message, fields)
}
