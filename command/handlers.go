package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messenger/core"
)

// MessagingService is the slice of core.Client the commands drive.
type MessagingService interface {
	SendMessage(ctx context.Context, req core.SendMessageRequest) (core.Message, error)
	RotateToken(token string) error
}

type SendMessageCommand struct {
	service MessagingService
}

func NewSendMessageCommand(service MessagingService) *SendMessageCommand {
	return &SendMessageCommand{service: service}
}

// Execute sends the message and stores the resulting core.Message in the
// result collector carried by ctx, if any.
func (c *SendMessageCommand) Execute(ctx context.Context, msg SendMessageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: messaging service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.SendMessage(ctx, core.SendMessageRequest{
		PersonID: msg.PersonID,
		Text:     msg.Text,
	})
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RotateTokenCommand struct {
	service MessagingService
}

func NewRotateTokenCommand(service MessagingService) *RotateTokenCommand {
	return &RotateTokenCommand{service: service}
}

func (c *RotateTokenCommand) Execute(_ context.Context, msg RotateTokenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: messaging service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.service.RotateToken(msg.Token)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
