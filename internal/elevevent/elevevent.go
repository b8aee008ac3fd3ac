package elevevent

import (
	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

type ElevatorEvent struct {
	//Golang doesnt support union types,
	//so we have to pass any of the below
	//structs
	Value any
}

// Emitted by a car

type ArrivedAtFloorEvent struct {
	CarID int `json:"car_id"`
	Floor int `json:"floor"`
}

type DoorsOpenedEvent struct {
	CarID int `json:"car_id"`
	Floor int `json:"floor"`
}

type DoorsClosedEvent struct {
	CarID int `json:"car_id"`
	Floor int `json:"floor"`
}

// Car reversed its sweep after closing doors
type DirectionChangedEvent struct {
	CarID int             `json:"car_id"`
	Dirn  elevconsts.Dirn `json:"dirn"`
}

type CarIdleEvent struct {
	CarID int `json:"car_id"`
	Floor int `json:"floor"`
}

// Emitted by the dispatcher

type CallAssignedEvent struct {
	CallID elevcall.ID `json:"call_id"`
	CarID  int         `json:"car_id"`
}

// No car was eligible, the call waits in the unassigned set
type CallHeldEvent struct {
	CallID elevcall.ID `json:"call_id"`
}

type CallServedEvent struct {
	CallID elevcall.ID `json:"call_id"`
	CarID  int         `json:"car_id"`
	Floor  int         `json:"floor"`
}

type CarOutOfServiceEvent struct {
	CarID int `json:"car_id"`
}

type CarRestoredEvent struct {
	CarID int `json:"car_id"`
}

func (aafe ArrivedAtFloorEvent) Wrap() ElevatorEvent {
	return ElevatorEvent{Value: aafe}
}

func (e *ElevatorEvent) EventType() string {
	switch e.Value.(type) {
	case ArrivedAtFloorEvent:
		return "ArrivedAtFloor"
	case DoorsOpenedEvent:
		return "DoorsOpened"
	case DoorsClosedEvent:
		return "DoorsClosed"
	case DirectionChangedEvent:
		return "DirectionChanged"
	case CarIdleEvent:
		return "CarIdle"
	case CallAssignedEvent:
		return "CallAssigned"
	case CallHeldEvent:
		return "CallHeld"
	case CallServedEvent:
		return "CallServed"
	case CarOutOfServiceEvent:
		return "CarOutOfService"
	case CarRestoredEvent:
		return "CarRestored"
	default:
		return "UnknownEvent"
	}
}

// Car state changes that make the dispatcher retry unassigned calls
func (e *ElevatorEvent) IsRetryTrigger() bool {
	switch e.Value.(type) {
	case DoorsOpenedEvent, DoorsClosedEvent, DirectionChangedEvent, CarIdleEvent, CarRestoredEvent, CarOutOfServiceEvent:
		return true
	default:
		return false
	}
}

func Wrap(value any) ElevatorEvent {
	return ElevatorEvent{Value: value}
}
