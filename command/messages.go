package command

import (
	"strings"
)

const (
	TypeSendMessage = "messenger.command.message.send"
	TypeRotateToken = "messenger.command.token.rotate"
)

type SendMessageMessage struct {
	PersonID string
	Text     string
}

func (SendMessageMessage) Type() string { return TypeSendMessage }

func (m SendMessageMessage) Validate() error {
	if strings.TrimSpace(m.PersonID) == "" {
		return commandValidationError("person_id", "person id is required")
	}
	if m.Text == "" {
		return commandValidationError("text", "message text is required")
	}
	return nil
}

type RotateTokenMessage struct {
	Token string
}

func (RotateTokenMessage) Type() string { return TypeRotateToken }

func (m RotateTokenMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return commandValidationError("token", "access token is required")
	}
	return nil
}
