package eventsourcing

import (
	"encoding/json"
	"fmt"
)

// Codec maps stable event-type tags to decode factories. Registration is
// static, at package init of each aggregate's event set; there is no runtime
// type-name lookup.
type Codec struct {
	factories map[string]func() Event
}

func NewCodec() *Codec {
	return &Codec{factories: map[string]func() Event{}}
}

// Register binds an event-type tag to a factory producing an empty event to
// decode into. Registering the same tag twice is a programming error.
func (c *Codec) Register(eventType string, factory func() Event) {
	if _, exists := c.factories[eventType]; exists {
		panic(fmt.Sprintf("eventsourcing: event type %q registered twice", eventType))
	}
	c.factories[eventType] = factory
}

// Decode rebuilds an event from its type tag and JSON payload.
func (c *Codec) Decode(eventType string, data []byte) (Event, error) {
	factory, ok := c.factories[eventType]
	if !ok {
		return nil, fmt.Errorf("eventsourcing: unknown event type %q", eventType)
	}
	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("eventsourcing: decode %s: %w", eventType, err)
	}
	return event, nil
}

// Encode serializes an event payload to JSON.
func Encode(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("eventsourcing: encode %s: %w", event.EventType(), err)
	}
	return data, nil
}
