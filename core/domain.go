package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	MessageActionCreated = "created"

	SignatureHeader = "x-hub-signature"
)

// Message is a text message either sent through the Send API or received in
// a webhook delivery. Created is an ISO 8601 (RFC 3339, UTC) timestamp.
type Message struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	PersonID string `json:"personId"`
	Created  string `json:"created"`
}

// Person is a read-only projection of a Messenger user profile.
type Person struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Avatar      string  `json:"avatar"`
	Locale      string  `json:"locale,omitempty"`
	Timezone    float64 `json:"timezone,omitempty"`
	Gender      string  `json:"gender,omitempty"`
}

type SendMessageRequest struct {
	PersonID string
	Text     string
}

// RequestDescriptor describes one Graph API call. Resource and ID are
// optional; Data is sent as a JSON body for POST/PUT and as query
// parameters for GET/DELETE.
type RequestDescriptor struct {
	Method   string
	Resource string
	ID       string
	Data     map[string]any
}

// WebhookRequest is the host-neutral view of an inbound webhook request.
// Fields carries attributes exposed by the host; the request body is read
// from the field named by Config.WebhookBodyField. Hosts that decode the
// body before dispatch should also set RawBody to the bytes received; the
// signature is checked against RawBody when it is present.
type WebhookRequest struct {
	Method     string
	URL        string
	Headers    map[string]string
	Fields     map[string]any
	RawBody    []byte
	DeliveryID string
}

// Header returns the header value matching name, case-insensitively. The
// value is returned exactly as the host supplied it.
func (r WebhookRequest) Header(name string) string {
	if len(r.Headers) == 0 {
		return ""
	}
	if value, ok := r.Headers[name]; ok {
		return value
	}
	canonical := http.CanonicalHeaderKey(name)
	for key, value := range r.Headers {
		if http.CanonicalHeaderKey(key) == canonical {
			return value
		}
	}
	return ""
}

// Field returns a host attribute and whether it is present.
func (r WebhookRequest) Field(name string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	value, ok := r.Fields[name]
	return value, ok
}

type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      EpochMillis      `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
	Raw       map[string]any   `json:"-"`
}

// UnmarshalJSON keeps the entry even when id or time arrive with an
// unexpected JSON type; those fields fall back to their zero values.
func (e *WebhookEntry) UnmarshalJSON(data []byte) error {
	type alias WebhookEntry
	var decoded struct {
		alias
		ID   json.RawMessage `json:"id"`
		Time json.RawMessage `json:"time"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entry := WebhookEntry(decoded.alias)
	entry.ID = looseString(decoded.ID)
	entry.Time = looseEpoch(decoded.Time)
	entry.Raw = raw
	*e = entry
	return nil
}

type Party struct {
	ID string `json:"id"`
}

// UnmarshalJSON accepts the id as a JSON string or number.
func (p *Party) UnmarshalJSON(data []byte) error {
	var decoded struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	p.ID = looseString(decoded.ID)
	return nil
}

type EventMessage struct {
	MID       string      `json:"mid"`
	Text      string      `json:"text"`
	Seq       int64       `json:"seq,omitempty"`
	Timestamp EpochMillis `json:"timestamp,omitempty"`
}

func (m *EventMessage) UnmarshalJSON(data []byte) error {
	var decoded struct {
		MID       json.RawMessage `json:"mid"`
		Text      json.RawMessage `json:"text"`
		Seq       json.RawMessage `json:"seq"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = EventMessage{
		MID:       looseString(decoded.MID),
		Text:      jsonString(decoded.Text),
		Seq:       int64(looseEpoch(decoded.Seq)),
		Timestamp: looseEpoch(decoded.Timestamp),
	}
	return nil
}

type Postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// MessagingEvent is one element of an entry's messaging list. Raw holds the
// full decoded event, including fields without a typed counterpart.
type MessagingEvent struct {
	Sender    Party          `json:"sender"`
	Recipient Party          `json:"recipient"`
	Timestamp EpochMillis    `json:"timestamp,omitempty"`
	Message   *EventMessage  `json:"message,omitempty"`
	Postback  *Postback      `json:"postback,omitempty"`
	Raw       map[string]any `json:"-"`
}

func (e *MessagingEvent) UnmarshalJSON(data []byte) error {
	type alias MessagingEvent
	var decoded struct {
		alias
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	event := MessagingEvent(decoded.alias)
	event.Timestamp = looseEpoch(decoded.Timestamp)
	event.Raw = raw
	*e = event
	return nil
}

// HasText reports whether the event carries a text message.
func (e MessagingEvent) HasText() bool {
	return e.Message != nil && e.Message.Text != ""
}

// EpochMillis is a Unix timestamp in milliseconds. It decodes from JSON
// numbers and from numeric strings.
type EpochMillis int64

func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*e = 0
		return nil
	}
	raw = strings.TrimSpace(strings.Trim(raw, `"`))
	if raw == "" {
		*e = 0
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		parsed, floatErr := strconv.ParseFloat(raw, 64)
		if floatErr != nil {
			return fmt.Errorf("core: invalid epoch milliseconds %q", raw)
		}
		value = int64(parsed)
	}
	*e = EpochMillis(value)
	return nil
}

func looseEpoch(data json.RawMessage) EpochMillis {
	if len(data) == 0 {
		return 0
	}
	var value EpochMillis
	if err := value.UnmarshalJSON(data); err != nil {
		return 0
	}
	return value
}

// looseString reads a JSON string or number as text. Anything else is "".
func looseString(data json.RawMessage) string {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		return jsonString(data)
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return ""
	}
	return number.String()
}

func jsonString(data json.RawMessage) string {
	var value string
	if len(data) == 0 || json.Unmarshal(data, &value) != nil {
		return ""
	}
	return value
}

func (e EpochMillis) IsZero() bool {
	return e == 0
}

func (e EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(e)).UTC()
}

func (e EpochMillis) ISO8601() string {
	return FormatTimestamp(e.Time())
}

// FormatTimestamp renders t as an ISO 8601 timestamp in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
