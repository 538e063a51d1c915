package query

import "strings"

const TypeGetPerson = "messenger.query.person.get"

type GetPersonMessage struct {
	PersonID string
}

func (GetPersonMessage) Type() string { return TypeGetPerson }

func (m GetPersonMessage) Validate() error {
	if strings.TrimSpace(m.PersonID) == "" {
		return queryValidationError("person_id", "person id is required")
	}
	return nil
}
