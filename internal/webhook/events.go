// Package webhook receives and dispatches provider event batches. The
// provider POSTs a JSON batch where every entry nests its event data under
// "msys" and exactly one category key; the processor fans entries out to
// handlers subscribed per category.
package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

// Category classifies an incoming event by the key it is nested under.
type Category string

const (
	CategoryMessage     Category = sparkpost.TypeMessage
	CategoryEngagement  Category = sparkpost.TypeEngagement
	CategoryGeneration  Category = sparkpost.TypeGeneration
	CategoryUnsubscribe Category = sparkpost.TypeUnsubscribe
	CategoryRelay       Category = sparkpost.TypeRelay
)

var knownCategories = map[Category]bool{
	CategoryMessage:     true,
	CategoryEngagement:  true,
	CategoryGeneration:  true,
	CategoryUnsubscribe: true,
	CategoryRelay:       true,
}

// Event is one decoded batch entry.
type Event struct {
	Category Category
	Data     map[string]any
}

// Type returns the event's "type" field ("bounce", "open", ...), or ""
// when absent.
func (e Event) Type() string {
	t, _ := e.Data["type"].(string)
	return t
}

// SubaccountID returns the event's subaccount, 0 when absent.
func (e Event) SubaccountID() int {
	switch v := e.Data["subaccount_id"].(type) {
	case float64:
		return int(v)
	case string:
		var id int
		fmt.Sscanf(v, "%d", &id)
		return id
	}
	return 0
}

type batchEntry struct {
	Msys map[string]map[string]any `json:"msys"`
}

// ParseBatch decodes a raw webhook body into events. The provider sends
// either a JSON array of entries or an object keyed by entry index;
// both shapes are accepted. Entries with an empty msys wrapper (the
// provider's validation ping) or an unknown category key are dropped.
func ParseBatch(body []byte) ([]Event, error) {
	var entries []batchEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		var keyed map[string]batchEntry
		if err := json.Unmarshal(body, &keyed); err != nil {
			return nil, fmt.Errorf("failed to decode webhook batch: %w", err)
		}
		for _, e := range keyed {
			entries = append(entries, e)
		}
	}

	var events []Event
	for _, entry := range entries {
		for key, data := range entry.Msys {
			if !knownCategories[Category(key)] {
				continue
			}
			events = append(events, Event{Category: Category(key), Data: data})
		}
	}
	return events, nil
}
