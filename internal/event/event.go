package event

import "encoding/json"

// Event is a single domain event emitted by the upstream payments
// service. It is created by the codec and read-only afterwards.
type Event struct {
	ServiceID                string          `json:"service_id"`
	ResourceExternalID       string          `json:"resource_external_id"`
	ParentResourceExternalID string          `json:"parent_resource_external_id,omitempty"`
	EventType                string          `json:"event_type"`
	EventDetails             json.RawMessage `json:"event_details,omitempty"`
	Live                     bool            `json:"live"`
}

// Details projects the loosely typed event_details payload into a map.
// The shape depends on the event type, so callers pick out only the
// fields they need. A missing or empty payload yields an empty map.
func (e Event) Details() map[string]interface{} {
	details := make(map[string]interface{})
	if len(e.EventDetails) == 0 {
		return details
	}
	if err := json.Unmarshal(e.EventDetails, &details); err != nil {
		return make(map[string]interface{})
	}
	return details
}

// DetailString returns the named event_details field as a string.
func (e Event) DetailString(name string) (string, bool) {
	v, ok := e.Details()[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DetailInt returns the named event_details field as an int64. JSON
// numbers decode as float64, so integral floats are accepted.
func (e Event) DetailInt(name string) (int64, bool) {
	v, ok := e.Details()[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
