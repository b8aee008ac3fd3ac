package elevcall

import (
	"testing"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

func TestAsHallCallKeepsIdentity(t *testing.T) {
	submitted := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	carCall := NewCarCall(7, 1, 4, submitted)

	hallCall := carCall.AsHallCall(elevconsts.Down)

	if hallCall.ID != carCall.ID {
		t.Errorf("AsHallCall().ID = %v, expected %v", hallCall.ID, carCall.ID)
	}
	if !hallCall.SubmittedAt.Equal(submitted) {
		t.Errorf("AsHallCall().SubmittedAt = %v, expected %v", hallCall.SubmittedAt, submitted)
	}
	if !hallCall.IsHall() || hallCall.OriginCar != NO_CAR {
		t.Errorf("AsHallCall() = %v, expected a hall call without origin car", hallCall)
	}
	if hallCall.Key() != (HallKey{Floor: 4, Dirn: elevconsts.Down}) {
		t.Errorf("AsHallCall().Key() = %v, expected {4 Down}", hallCall.Key())
	}
	if carCall.Kind != elevconsts.Car {
		t.Errorf("original call was modified: %v", carCall)
	}
}

func TestWaited(t *testing.T) {
	submitted := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	call := NewHallCall(1, 3, elevconsts.Up, submitted)

	if call.Waited(submitted.Add(90*time.Second)) != 90*time.Second {
		t.Errorf("Waited() = %v, expected 90s", call.Waited(submitted.Add(90*time.Second)))
	}
	if call.Waited(submitted.Add(-time.Second)) != 0 {
		t.Errorf("Waited() before submission = %v, expected 0", call.Waited(submitted.Add(-time.Second)))
	}
}
