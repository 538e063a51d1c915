package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-messenger/core"
)

// deliveryBody is the request body in the two shapes the dispatcher needs:
// the exact bytes received (from RawBody or a raw body field) and the
// structured value used for authentication when no bytes are available.
type deliveryBody struct {
	raw   []byte
	value any
}

func resolveBody(value any, rawBody []byte) (deliveryBody, error) {
	var body deliveryBody
	switch typed := value.(type) {
	case nil:
		if len(rawBody) == 0 {
			return deliveryBody{}, fmt.Errorf("webhooks: request body is empty")
		}
	case string:
		body = deliveryBody{raw: []byte(typed), value: typed}
	case []byte:
		body = deliveryBody{raw: typed, value: typed}
	case json.RawMessage:
		body = deliveryBody{raw: []byte(typed), value: typed}
	default:
		body = deliveryBody{value: typed}
	}
	if len(rawBody) > 0 {
		body.raw = rawBody
	}
	return body, nil
}

// authPayload is what the signature is checked against.
func (b deliveryBody) authPayload() any {
	if b.raw != nil {
		return b.raw
	}
	return b.value
}

func (b deliveryBody) envelope() (core.WebhookEnvelope, error) {
	data := b.raw
	if data == nil {
		if envelope, ok := b.value.(core.WebhookEnvelope); ok {
			return envelope, nil
		}
		if envelope, ok := b.value.(*core.WebhookEnvelope); ok && envelope != nil {
			return *envelope, nil
		}
		encoded, err := json.Marshal(b.value)
		if err != nil {
			return core.WebhookEnvelope{}, fmt.Errorf("webhooks: encode structured body: %w", err)
		}
		data = encoded
	}
	return decodeEnvelope(data)
}

func decodeEnvelope(data []byte) (core.WebhookEnvelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return core.WebhookEnvelope{}, fmt.Errorf("webhooks: request body is empty")
	}
	if trimmed[0] != '{' {
		return core.WebhookEnvelope{}, fmt.Errorf("webhooks: request body is not a JSON object")
	}
	var envelope core.WebhookEnvelope
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&envelope); err != nil {
		return core.WebhookEnvelope{}, fmt.Errorf("webhooks: parse request body: %w", err)
	}
	return envelope, nil
}
