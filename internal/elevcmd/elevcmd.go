package elevcmd

import (
	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

type ElevatorCommand struct {
	//Golang doesnt support union types,
	//so we have to pass any of the below
	//structs
	Value any
}

// Answer to a command. Value holds the command specific result.
type Reply struct {
	Value any
	Err   error
}

type SubmitHallCallCommand struct {
	Floor int
	Dirn  elevconsts.Dirn
	Reply chan Reply
}

type SubmitCarCallCommand struct {
	CarID int
	Floor int
	Reply chan Reply
}

type StatusCommand struct {
	CarID int
	Reply chan Reply
}

// Status of every car, in car id order
type StatusAllCommand struct {
	Reply chan Reply
}

type CallStatusCommand struct {
	CallID elevcall.ID
	Reply  chan Reply
}

type OutOfServiceCommand struct {
	CarID int
	Reply chan Reply
}

type RestoreCommand struct {
	CarID int
	Reply chan Reply
}

// Advances one car by a single step. Reply may be nil for worker ticks.
type StepCommand struct {
	CarID int
	Reply chan Reply
}

type UnassignedCommand struct {
	Reply chan Reply
}

func (e *ElevatorCommand) CommandType() string {
	switch e.Value.(type) {
	case SubmitHallCallCommand:
		return "SubmitHallCallCommand"
	case SubmitCarCallCommand:
		return "SubmitCarCallCommand"
	case StatusCommand:
		return "StatusCommand"
	case StatusAllCommand:
		return "StatusAllCommand"
	case CallStatusCommand:
		return "CallStatusCommand"
	case OutOfServiceCommand:
		return "OutOfServiceCommand"
	case RestoreCommand:
		return "RestoreCommand"
	case StepCommand:
		return "StepCommand"
	case UnassignedCommand:
		return "UnassignedCommand"
	default:
		return "UnknownCommand"
	}
}

// Sends reply without blocking the sender when nobody listens
func Respond(reply chan Reply, value any, err error) {
	if reply == nil {
		return
	}
	select {
	case reply <- Reply{Value: value, Err: err}:
	default:
	}
}
