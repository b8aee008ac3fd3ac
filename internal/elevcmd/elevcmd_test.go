package elevcmd

import (
	"errors"
	"testing"
)

func TestCommandType(t *testing.T) {
	elevatorCommandArray := []ElevatorCommand{
		{Value: SubmitHallCallCommand{}},
		{Value: SubmitCarCallCommand{}},
		{Value: StatusCommand{}},
		{Value: StatusAllCommand{}},
		{Value: CallStatusCommand{}},
		{Value: OutOfServiceCommand{}},
		{Value: RestoreCommand{}},
		{Value: StepCommand{}},
		{Value: UnassignedCommand{}},
		{Value: struct{}{}},
	}

	elevatorCommandStringArray := []string{
		"SubmitHallCallCommand",
		"SubmitCarCallCommand",
		"StatusCommand",
		"StatusAllCommand",
		"CallStatusCommand",
		"OutOfServiceCommand",
		"RestoreCommand",
		"StepCommand",
		"UnassignedCommand",
		"UnknownCommand",
	}

	for index, elevatorCommand := range elevatorCommandArray {
		if elevatorCommand.CommandType() != elevatorCommandStringArray[index] {
			t.Errorf("Elevator.CommandType() returned %v, expected %v", elevatorCommand.CommandType(), elevatorCommandStringArray[index])
		}
	}
}

func TestRespond(t *testing.T) {
	Respond(nil, 1, nil)

	reply := make(chan Reply, 1)
	errTest := errors.New("test")
	Respond(reply, 7, errTest)
	Respond(reply, 8, nil) //full, dropped

	got := <-reply
	if got.Value != 7 || !errors.Is(got.Err, errTest) {
		t.Errorf("Respond() delivered %v, expected {7 test}", got)
	}
	if len(reply) != 0 {
		t.Errorf("Respond() on full channel queued a second reply")
	}
}
