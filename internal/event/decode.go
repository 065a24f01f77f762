package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNilPayload = errors.New("event payload is nil")

// DecodePayload converts an event payload into T. In-process publishers
// hand over T or *T directly. Payloads replayed from the event log or a
// dead-letter file arrive as raw JSON or as generic maps and are decoded.
func DecodePayload[T any](payload interface{}) (T, error) {
	var out T
	switch p := payload.(type) {
	case nil:
		return out, ErrNilPayload
	case T:
		return p, nil
	case *T:
		if p == nil {
			return out, ErrNilPayload
		}
		return *p, nil
	case json.RawMessage:
		return out, unmarshalPayload(p, &out)
	case []byte:
		return out, unmarshalPayload(p, &out)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("encode %T payload: %w", payload, err)
	}
	return out, unmarshalPayload(data, &out)
}

func unmarshalPayload(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %T payload: %w", out, err)
	}
	return nil
}
