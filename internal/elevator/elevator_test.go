package elevator

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevconfig"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/elevmetadata"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

const TEST_TIMEOUT = 2 * time.Second

func testMetaData() *elevmetadata.BankMetaData {
	return &elevmetadata.BankMetaData{SoftwareVersion: "dev", Identifier: "uwvvblrtct", NumFloors: 10, NumCars: 2}
}

func newManualBank(t *testing.T) *Bank {
	t.Helper()
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	clock := elevdispatch.NewManualClock(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	bank, err := NewBank(elevconfig.Default(), testMetaData(), WithManualStepping(), WithClock(clock))
	if err != nil {
		t.Fatalf("NewBank() returned error %v", err)
	}
	bank.Start()
	t.Cleanup(bank.Stop)
	return bank
}

// Collects whatever is already waiting on the event channel
func drainEvents(bank *Bank) []elevevent.ElevatorEvent {
	var events []elevevent.ElevatorEvent
	for {
		select {
		case event := <-bank.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestNewBankRejectsInvalidConfig(t *testing.T) {
	config := elevconfig.Default()
	config.NumCars = 0

	if _, err := NewBank(config, testMetaData()); !errors.Is(err, elevconfig.ErrNoCars) {
		t.Errorf("NewBank() returned %v, expected ErrNoCars", err)
	}
}

func TestOperationsRequireRunningBank(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	bank, err := NewBank(elevconfig.Default(), testMetaData(), WithManualStepping())
	if err != nil {
		t.Fatalf("NewBank() returned error %v", err)
	}

	if _, err := bank.SubmitHallCall(3, elevconsts.Up); !errors.Is(err, ErrNotRunning) {
		t.Errorf("SubmitHallCall() before Start() returned %v, expected ErrNotRunning", err)
	}

	bank.Start()
	if _, err := bank.GetStatus(0); err != nil {
		t.Errorf("GetStatus() on running bank returned %v", err)
	}
	bank.Stop()

	if _, err := bank.GetStatus(0); !errors.Is(err, ErrNotRunning) {
		t.Errorf("GetStatus() after Stop() returned %v, expected ErrNotRunning", err)
	}
	bank.Stop()
}

func TestManualBankServesHallCall(t *testing.T) {
	bank := newManualBank(t)

	id, err := bank.SubmitHallCall(5, elevconsts.Up)
	if err != nil {
		t.Fatalf("SubmitHallCall() returned error %v", err)
	}
	status, err := bank.CallStatus(id)
	if err != nil || !status.Assigned || status.CarID != 0 {
		t.Errorf("CallStatus() = %v, %v, expected call assigned to car 0", status, err)
	}

	for i := 0; i < 5; i++ {
		if err := bank.StepAll(); err != nil {
			t.Fatalf("StepAll() returned error %v", err)
		}
	}

	if _, err := bank.CallStatus(id); !errors.Is(err, elevdispatch.ErrUnknownCall) {
		t.Errorf("CallStatus() after service returned %v, expected ErrUnknownCall", err)
	}

	var types []string
	for _, event := range drainEvents(bank) {
		types = append(types, event.EventType())
	}
	expected := []string{"CallAssigned", "ArrivedAtFloor", "ArrivedAtFloor", "ArrivedAtFloor", "ArrivedAtFloor", "ArrivedAtFloor", "DoorsOpened", "CallServed"}
	if !slices.Equal(types, expected) {
		t.Errorf("Events = %v, expected %v", types, expected)
	}
}

func TestSubmitErrorsReachCaller(t *testing.T) {
	bank := newManualBank(t)

	if _, err := bank.SubmitHallCall(42, elevconsts.Up); !errors.Is(err, elevdispatch.ErrInvalidFloor) {
		t.Errorf("SubmitHallCall(42) returned %v, expected ErrInvalidFloor", err)
	}
	if _, err := bank.SubmitCarCall(7, 1); !errors.Is(err, elevdispatch.ErrUnknownCar) {
		t.Errorf("SubmitCarCall(7, 1) returned %v, expected ErrUnknownCar", err)
	}
	if _, err := bank.GetStatus(-1); !errors.Is(err, elevdispatch.ErrUnknownCar) {
		t.Errorf("GetStatus(-1) returned %v, expected ErrUnknownCar", err)
	}
}

func TestOutOfServiceMovesCallsToOtherCar(t *testing.T) {
	bank := newManualBank(t)

	bank.SubmitCarCall(0, 4)
	bank.SubmitCarCall(0, 7)

	if err := bank.SetOutOfService(0); err != nil {
		t.Fatalf("SetOutOfService() returned error %v", err)
	}

	unassigned, err := bank.Unassigned()
	if err != nil || len(unassigned) != 0 {
		t.Errorf("Unassigned() = %v, %v, expected none", unassigned, err)
	}
	other, _ := bank.GetStatus(1)
	if !slices.Equal(other.PendingStops, []int{4, 7}) {
		t.Errorf("Car 1 PendingStops = %v, expected [4 7]", other.PendingStops)
	}
	broken, _ := bank.GetStatus(0)
	if broken.Status != elevconsts.OutOfService {
		t.Errorf("Car 0 Status = %v, expected CS_OutOfService", broken.Status)
	}
	if _, err := bank.SubmitCarCall(0, 2); !errors.Is(err, elevdispatch.ErrCarOutOfService) {
		t.Errorf("SubmitCarCall() on broken car returned %v, expected ErrCarOutOfService", err)
	}

	if err := bank.Restore(0); err != nil {
		t.Fatalf("Restore() returned error %v", err)
	}
	restored, _ := bank.GetStatus(0)
	if restored.Status != elevconsts.Idle || !restored.InService {
		t.Errorf("Car 0 after restore = %v, expected idle in service", restored)
	}

	snapshots, err := bank.Snapshots()
	if err != nil || len(snapshots) != 2 {
		t.Errorf("Snapshots() = %v, %v, expected 2 cars", snapshots, err)
	}
}

func TestStepCarRequiresManualMode(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	config := elevconfig.Default()
	config.StepInterval = 5 * time.Millisecond
	bank, err := NewBank(config, testMetaData())
	if err != nil {
		t.Fatalf("NewBank() returned error %v", err)
	}
	bank.Start()
	defer bank.Stop()

	if _, err := bank.StepCar(0); !errors.Is(err, ErrManualStepping) {
		t.Errorf("StepCar() on live bank returned %v, expected ErrManualStepping", err)
	}
}

func TestLiveBankServesCarCall(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	config := elevconfig.Default()
	config.StepInterval = 2 * time.Millisecond
	config.DoorDwellSteps = 1
	bank, err := NewBank(config, testMetaData())
	if err != nil {
		t.Fatalf("NewBank() returned error %v", err)
	}
	bank.Start()
	defer bank.Stop()

	id, err := bank.SubmitCarCall(1, 3)
	if err != nil {
		t.Fatalf("SubmitCarCall() returned error %v", err)
	}

	timeout := time.NewTimer(TEST_TIMEOUT)
	defer timeout.Stop()
	for {
		select {
		case event := <-bank.Events():
			served, ok := event.Value.(elevevent.CallServedEvent)
			if !ok {
				continue
			}
			if served.CallID != id || served.CarID != 1 || served.Floor != 3 {
				t.Errorf("CallServed = %v, expected call %d served by car 1 at floor 3", served, id)
			}
			return
		case <-timeout.C:
			t.Fatalf("Timed out waiting for call %d to be served", id)
		}
	}
}
