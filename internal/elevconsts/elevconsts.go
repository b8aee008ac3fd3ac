package elevconsts

import (
	"fmt"
	"strings"
)

const (
	DEFAULT_NUM_FLOORS       = 10
	DEFAULT_NUM_CARS         = 2
	DEFAULT_DOOR_DWELL_STEPS = 3
)

// Direction of travel. Stop is the direction of an idle car.
type Dirn int

const (
	Down Dirn = -1
	Stop Dirn = 0
	Up   Dirn = 1
)

func (d Dirn) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Stop:
		return "Stop"
	default:
		return "Undefined"
	}
}

func (d Dirn) Opposite() Dirn {
	return -d
}

// Up and Down are the only directions a hall call can carry
func (d Dirn) IsTravel() bool {
	return d == Up || d == Down
}

func (d Dirn) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(d.String())), nil
}

func (d *Dirn) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "up", "u":
		*d = Up
	case "down", "d":
		*d = Down
	case "stop", "idle", "":
		*d = Stop
	default:
		return fmt.Errorf("unknown direction %q", string(text))
	}
	return nil
}

type CarStatus int

const (
	Idle CarStatus = iota
	Moving
	DoorsOpen
	OutOfService
)

func (cs CarStatus) String() string {
	switch cs {
	case Idle:
		return "CS_Idle"
	case Moving:
		return "CS_Moving"
	case DoorsOpen:
		return "CS_DoorsOpen"
	case OutOfService:
		return "CS_OutOfService"
	default:
		return "CS_UNDEFINED"
	}
}

func (cs CarStatus) MarshalText() ([]byte, error) {
	return []byte(cs.String()), nil
}

func (cs *CarStatus) UnmarshalText(text []byte) error {
	for _, status := range []CarStatus{Idle, Moving, DoorsOpen, OutOfService} {
		if status.String() == string(text) {
			*cs = status
			return nil
		}
	}
	return fmt.Errorf("unknown car status %q", string(text))
}

type CallKind int

const (
	Hall CallKind = iota
	Car
)

func (ck CallKind) String() string {
	switch ck {
	case Hall:
		return "K_Hall"
	case Car:
		return "K_Car"
	default:
		return "K_UNDEFINED"
	}
}

func (ck CallKind) MarshalText() ([]byte, error) {
	return []byte(ck.String()), nil
}

func (ck *CallKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case Hall.String():
		*ck = Hall
	case Car.String():
		*ck = Car
	default:
		return fmt.Errorf("unknown call kind %q", string(text))
	}
	return nil
}
