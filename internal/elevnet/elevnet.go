package elevnet

import (
	"encoding/json"
	"fmt"

	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

const (
	BUFFER_LENGTH = 1024 //for receiving and transmitting
)

// What goes on the wire for each outward event
type EventMessage struct {
	Type  string          `json:"type"`
	Bank  string          `json:"bank"`
	Event json.RawMessage `json:"event"`
}

// Event decoded from the wire, tagged with the bank that sent it
type ReceivedEvent struct {
	Bank  string
	Event elevevent.ElevatorEvent
}

func EncodeEvent(bank string, event elevevent.ElevatorEvent) ([]byte, error) {
	payload, err := json.Marshal(event.Value)
	if err != nil {
		return nil, fmt.Errorf("error marshalling %s: %w", event.EventType(), err)
	}
	return json.Marshal(EventMessage{Type: event.EventType(), Bank: bank, Event: payload})
}

func DecodeEvent(data []byte) (ReceivedEvent, error) {
	var message EventMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return ReceivedEvent{}, fmt.Errorf("error deserialising message: %w", err)
	}

	value, err := decodePayload(message.Type, message.Event)
	if err != nil {
		return ReceivedEvent{}, err
	}
	return ReceivedEvent{Bank: message.Bank, Event: elevevent.Wrap(value)}, nil
}

func decodeAs[T any](payload json.RawMessage) (any, error) {
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func decodePayload(eventType string, payload json.RawMessage) (any, error) {
	var value any
	var err error

	switch eventType {
	case "ArrivedAtFloor":
		value, err = decodeAs[elevevent.ArrivedAtFloorEvent](payload)
	case "DoorsOpened":
		value, err = decodeAs[elevevent.DoorsOpenedEvent](payload)
	case "DoorsClosed":
		value, err = decodeAs[elevevent.DoorsClosedEvent](payload)
	case "DirectionChanged":
		value, err = decodeAs[elevevent.DirectionChangedEvent](payload)
	case "CarIdle":
		value, err = decodeAs[elevevent.CarIdleEvent](payload)
	case "CallAssigned":
		value, err = decodeAs[elevevent.CallAssignedEvent](payload)
	case "CallHeld":
		value, err = decodeAs[elevevent.CallHeldEvent](payload)
	case "CallServed":
		value, err = decodeAs[elevevent.CallServedEvent](payload)
	case "CarOutOfService":
		value, err = decodeAs[elevevent.CarOutOfServiceEvent](payload)
	case "CarRestored":
		value, err = decodeAs[elevevent.CarRestoredEvent](payload)
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	if err != nil {
		return nil, fmt.Errorf("error deserialising %s: %w", eventType, err)
	}
	return value, nil
}
