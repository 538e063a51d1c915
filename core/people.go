package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// PersonFields is the field selection requested for profile lookups.
const PersonFields = "first_name,last_name,profile_pic,locale,timezone,gender"

func (c *Client) GetPerson(ctx context.Context, personID string) (person Person, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()
	personID = strings.TrimSpace(personID)
	fields := map[string]any{"person_id": personID}
	defer func() {
		c.observeOperation(ctx, startedAt, "get_person", err, fields)
	}()

	if personID == "" {
		return Person{}, NewValidationError("person_id", "person id is required")
	}

	payload, err := c.Call(ctx, RequestDescriptor{
		Method: http.MethodGet,
		ID:     personID,
		Data:   map[string]any{"fields": PersonFields},
	})
	if err != nil {
		return Person{}, err
	}

	first := stringField(payload, "first_name")
	last := stringField(payload, "last_name")
	return Person{
		ID:          personID,
		DisplayName: first + " " + last,
		FirstName:   first,
		LastName:    last,
		Avatar:      stringField(payload, "profile_pic"),
		Locale:      stringField(payload, "locale"),
		Timezone:    floatField(payload, "timezone"),
		Gender:      stringField(payload, "gender"),
	}, nil
}

func floatField(payload map[string]any, key string) float64 {
	switch typed := payload[key].(type) {
	case json.Number:
		value, err := typed.Float64()
		if err != nil {
			return 0
		}
		return value
	case float64:
		return typed
	case int:
		return float64(typed)
	default:
		return 0
	}
}
