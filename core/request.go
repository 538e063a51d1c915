package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const accessTokenParam = "access_token"

// Call sends one Graph API request and returns the decoded JSON object of a
// 200 response. Tokens are checked before anything touches the network.
func (c *Client) Call(ctx context.Context, desc RequestDescriptor) (result map[string]any, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	method := strings.ToUpper(strings.TrimSpace(desc.Method))
	fields := map[string]any{
		"method":   method,
		"resource": strings.TrimSpace(desc.Resource),
	}
	defer func() {
		c.observeOperation(ctx, startedAt, "call", err, fields)
	}()

	if c == nil {
		return nil, NewInternalError("messenger: client is nil", nil)
	}
	cfg := c.Config()
	if strings.TrimSpace(cfg.AccessToken) == "" || strings.TrimSpace(cfg.VerifyToken) == "" {
		return nil, NewConfigError("messenger: access token and verify token are required", map[string]any{
			"has_access_token": strings.TrimSpace(cfg.AccessToken) != "",
			"has_verify_token": strings.TrimSpace(cfg.VerifyToken) != "",
		})
	}
	if method == "" {
		return nil, NewRequestError("messenger: request method is required", nil)
	}
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, NewRequestError("messenger: unsupported request method", map[string]any{"method": method})
	}
	if c.transport == nil {
		return nil, NewConfigError("messenger: transport adapter is required", nil)
	}

	endpoint := buildEndpoint(cfg.APIBaseURL, desc.Resource, desc.ID)
	fields["url"] = endpoint

	req := TransportRequest{
		Method:  method,
		URL:     endpoint,
		Headers: map[string]string{"Accept": "application/json"},
		Query:   map[string]string{},
	}
	switch method {
	case http.MethodPost, http.MethodPut:
		body := desc.Data
		if body == nil {
			body = map[string]any{}
		}
		encoded, encodeErr := json.Marshal(body)
		if encodeErr != nil {
			return nil, NewRequestError("messenger: encode request body", map[string]any{
				"method": method,
				"error":  encodeErr.Error(),
			})
		}
		req.Body = encoded
		req.Headers["Content-Type"] = "application/json"
	default:
		query, queryErr := encodeQuery(desc.Data)
		if queryErr != nil {
			return nil, NewRequestError("messenger: encode query parameters", map[string]any{
				"method": method,
				"error":  queryErr.Error(),
			})
		}
		req.Query = query
	}
	req.Query[accessTokenParam] = cfg.AccessToken

	res, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, WrapTransportError(err, "messenger: request failed", map[string]any{
			"method": method,
			"url":    endpoint,
		})
	}
	fields["status_code"] = res.StatusCode
	if res.StatusCode == 0 || res.Headers == nil {
		return nil, NewInvalidResponseError("messenger: response is missing status or headers", map[string]any{
			"method": method,
			"url":    endpoint,
		})
	}
	if res.StatusCode != http.StatusOK {
		apiErr := NewAPIError(res.StatusCode, method, endpoint, map[string]any{
			"body": truncateBody(res.Body),
		})
		return nil, apiErr
	}
	payload, err := decodeObject(res.Body)
	if err != nil {
		return nil, WrapInvalidResponseError(err, "messenger: response body is not a JSON object", map[string]any{
			"method":      method,
			"url":         endpoint,
			"status_code": res.StatusCode,
		})
	}
	return payload, nil
}

// buildEndpoint joins the base URL, the optional resource and the optional
// id. A resource is always followed by a slash.
func buildEndpoint(base string, resource string, id string) string {
	base = strings.TrimSpace(base)
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	var b strings.Builder
	b.WriteString(base)
	if resource = strings.Trim(strings.TrimSpace(resource), "/"); resource != "" {
		b.WriteString(resource)
		b.WriteString("/")
	}
	if id = strings.TrimSpace(id); id != "" {
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}

func encodeQuery(data map[string]any) (map[string]string, error) {
	query := make(map[string]string, len(data)+1)
	for key, value := range data {
		key = strings.TrimSpace(key)
		if key == "" || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			query[key] = typed
		case fmt.Stringer:
			query[key] = typed.String()
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
			query[key] = fmt.Sprint(typed)
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				return nil, fmt.Errorf("encode %q: %w", key, err)
			}
			query[key] = string(encoded)
		}
	}
	return query, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	payload := map[string]any{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return payload, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
