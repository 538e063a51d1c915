package webhooks

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-messenger/core"
)

const DefaultMaxBodyBytes int64 = 1 << 20 // 1 MiB

type handlerConfig struct {
	maxBodyBytes int64
}

type HandlerOption func(*handlerConfig)

func WithMaxBodyBytes(limit int64) HandlerOption {
	return func(c *handlerConfig) {
		c.maxBodyBytes = limit
	}
}

type httpHandler struct {
	dispatcher   *Dispatcher
	maxBodyBytes int64
}

// Handler exposes the dispatcher as an http.Handler. The acknowledgment is
// flushed before the delivery is processed on the request goroutine.
func Handler(d *Dispatcher, opts ...HandlerOption) http.Handler {
	cfg := handlerConfig{maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.maxBodyBytes <= 0 {
		cfg.maxBodyBytes = DefaultMaxBodyBytes
	}
	return &httpHandler{dispatcher: d, maxBodyBytes: cfg.maxBodyBytes}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	responder := NewHTTPResponder(w)
	if h.dispatcher == nil {
		_ = responder.Respond(http.StatusOK, AckBody)
		return
	}

	deliveryID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil || int64(len(body)) > h.maxBodyBytes {
		if deliveryID == "" {
			deliveryID = h.dispatcher.newDeliveryID()
		}
		fields := map[string]any{
			deliveryIDField: deliveryID,
			"method":        strings.ToUpper(r.Method),
			"limit_bytes":   h.maxBodyBytes,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		ctx := context.WithoutCancel(r.Context())
		h.dispatcher.acknowledge(ctx, responder, http.StatusOK, AckBody, fields)
		h.dispatcher.finish(ctx, outcomeOversized, "warn", "webhook body dropped", fields)
		return
	}

	bodyField := h.dispatcher.Config().WebhookBodyField
	if strings.TrimSpace(bodyField) == "" {
		bodyField = core.DefaultWebhookBodyField
	}
	req := core.WebhookRequest{
		Method:  r.Method,
		URL:     r.URL.String(),
		Headers: lowerHeaders(r.Header),
		Fields: map[string]any{
			"remote_addr": r.RemoteAddr,
			"host":        r.Host,
		},
		RawBody:    body,
		DeliveryID: deliveryID,
	}
	req.Fields[bodyField] = body

	h.dispatcher.Dispatch(context.WithoutCancel(r.Context()), req, responder)
	if !responder.Responded() {
		_ = responder.Respond(http.StatusOK, AckBody)
	}
}

func lowerHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			out[strings.ToLower(key)] = ""
			continue
		}
		out[strings.ToLower(key)] = values[0]
	}
	return out
}
