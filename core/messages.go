package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const messagesResource = "me/messages"

// SendMessage delivers a text message to a person. The returned message is
// bound to req.PersonID and stamped with the client clock.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (msg Message, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{"person_id": strings.TrimSpace(req.PersonID)}
	defer func() {
		c.observeOperation(ctx, startedAt, "send_message", err, fields)
	}()

	personID := strings.TrimSpace(req.PersonID)
	if personID == "" {
		return Message{}, NewValidationError("person_id", "person id is required")
	}
	if req.Text == "" {
		return Message{}, NewValidationError("text", "message text is required")
	}

	payload, err := c.Call(ctx, RequestDescriptor{
		Method:   http.MethodPost,
		Resource: messagesResource,
		Data: map[string]any{
			"recipient": map[string]any{"id": personID},
			"message":   map[string]any{"text": req.Text},
		},
	})
	if err != nil {
		return Message{}, err
	}

	messageID := stringField(payload, "message_id")
	fields["message_id"] = messageID
	return Message{
		ID:       messageID,
		Text:     req.Text,
		PersonID: personID,
		Created:  FormatTimestamp(c.now()),
	}, nil
}

func stringField(payload map[string]any, key string) string {
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}
	if typed, ok := value.(string); ok {
		return typed
	}
	return fmt.Sprint(value)
}
