package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// envelope is the wrapper produced by the notification fan-out service.
// The actual event JSON travels as a string in the Message field.
type envelope struct {
	Message string `json:"Message"`
}

// DecodeError marks a message body that cannot be parsed at either the
// envelope or the event layer. It is non-retryable: redelivering the
// same bytes can never make them parse.
type DecodeError struct {
	Stage string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Stage, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Decode parses a raw transport body into an Event. Bodies wrapped in a
// fan-out envelope ({"Message": "<json>"}) are unwrapped first; bodies
// without the envelope field are parsed as the event directly. Unknown
// JSON fields are ignored on both layers.
func Decode(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, &DecodeError{Stage: "envelope", Cause: err}
	}

	inner := body
	if strings.TrimSpace(env.Message) != "" {
		inner = []byte(env.Message)
	}

	var ev Event
	if err := json.Unmarshal(inner, &ev); err != nil {
		return Event{}, &DecodeError{Stage: "event", Cause: err}
	}

	return ev, nil
}
