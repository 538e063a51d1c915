package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messenger/core"
)

var (
	_ gocmd.Commander[SendMessageMessage] = (*SendMessageCommand)(nil)
	_ gocmd.Commander[RotateTokenMessage] = (*RotateTokenCommand)(nil)

	_ MessagingService = (*core.Client)(nil)
)
