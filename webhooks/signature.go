package webhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-messenger/core"
)

const SignaturePrefix = "sha1="

// Sign returns the x-hub-signature value for payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	_, _ = mac.Write(payload)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Authenticate checks signature against the HMAC-SHA1 of payload keyed by
// secret and returns payload unchanged on success. The comparison is against
// the header value exactly as supplied.
//
// Strings, byte slices and json.RawMessage are signed as-is. Maps, structs and
// slices are signed over their compact JSON encoding with HTML characters left
// unescaped, which matches what the sender signs for structs whose field order
// follows the delivered document. A map[string]any encodes its keys sorted and
// cannot keep the sender's key order, so hosts that have the original body
// should pass those bytes (WebhookRequest.RawBody) instead.
func Authenticate(secret string, signature string, payload any) (any, error) {
	if secret == "" {
		return nil, core.NewAuthError("webhooks: signature secret is required", nil)
	}
	if strings.TrimSpace(signature) == "" {
		return nil, core.NewAuthError("webhooks: signature header is required", nil)
	}
	raw, err := signedBytes(payload)
	if err != nil {
		return nil, err
	}
	expected := Sign(secret, raw)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, core.NewAuthError("webhooks: signature verification failed", map[string]any{
			"signature_prefix": signaturePrefixOf(signature),
		})
	}
	return payload, nil
}

func signedBytes(payload any) ([]byte, error) {
	switch typed := payload.(type) {
	case nil:
		return nil, core.NewAuthError("webhooks: payload is required", nil)
	case string:
		return []byte(typed), nil
	case []byte:
		return typed, nil
	case json.RawMessage:
		return []byte(typed), nil
	}

	kind := reflect.TypeOf(payload).Kind()
	if kind == reflect.Pointer {
		value := reflect.ValueOf(payload)
		if value.IsNil() {
			return nil, core.NewAuthError("webhooks: payload is required", nil)
		}
		kind = value.Elem().Kind()
	}
	switch kind {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
	default:
		return nil, core.NewAuthError(
			fmt.Sprintf("webhooks: unsupported payload type %T", payload),
			map[string]any{"payload_type": fmt.Sprintf("%T", payload)},
		)
	}
	encoded, err := encodeSigned(payload)
	if err != nil {
		return nil, core.WrapAuthError(err, "webhooks: encode payload", map[string]any{
			"payload_type": fmt.Sprintf("%T", payload),
		})
	}
	return encoded, nil
}

// encodeSigned renders payload the way JSON.stringify does for plain data:
// compact, no HTML escaping, no trailing newline.
func encodeSigned(payload any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func signaturePrefixOf(signature string) string {
	if index := strings.Index(signature, "="); index > 0 {
		return signature[:index]
	}
	return ""
}
