package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messenger/core"
)

var (
	_ gocmd.Querier[GetPersonMessage, core.Person] = (*GetPersonQuery)(nil)

	_ PersonReader = (*core.Client)(nil)
)
