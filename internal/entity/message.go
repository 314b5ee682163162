package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedFrame = errors.New("malformed frame")

type IncomeMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// InboundMessage is one of Ping, CursorMove or Unrecognized.
type InboundMessage interface {
	inbound()
}

type Ping struct{}

type CursorMove struct {
	Data json.RawMessage
}

type Unrecognized struct {
	Type string
}

func (Ping) inbound()         {}
func (CursorMove) inbound()   {}
func (Unrecognized) inbound() {}

var (
	emptyObject = json.RawMessage(`{}`)
	jsonNull    = []byte(`null`)
)

// DecodeInbound parses one client frame. Anything that is not a JSON object
// is malformed; an object without a known type is Unrecognized.
func DecodeInbound(frame []byte) (InboundMessage, error) {
	if bytes.Equal(bytes.TrimSpace(frame), jsonNull) {
		return nil, fmt.Errorf("%w: null frame", ErrMalformedFrame)
	}

	var incoming IncomeMessage
	if err := json.Unmarshal(frame, &incoming); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch EventType(incoming.Type) {
	case inboundPing:
		return Ping{}, nil
	case EventCursorMove:
		data := incoming.Data
		if len(data) == 0 || string(data) == "null" {
			data = emptyObject
		}
		return CursorMove{Data: data}, nil
	default:
		return Unrecognized{Type: incoming.Type}, nil
	}
}
