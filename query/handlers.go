package query

import (
	"context"

	"github.com/goliatone/go-messenger/core"
)

type PersonReader interface {
	GetPerson(ctx context.Context, personID string) (core.Person, error)
}

type GetPersonQuery struct {
	reader PersonReader
}

func NewGetPersonQuery(reader PersonReader) *GetPersonQuery {
	return &GetPersonQuery{reader: reader}
}

func (q *GetPersonQuery) Query(ctx context.Context, msg GetPersonMessage) (core.Person, error) {
	if q == nil || q.reader == nil {
		return core.Person{}, queryDependencyError("query: person reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Person{}, err
	}
	return q.reader.GetPerson(ctx, msg.PersonID)
}
