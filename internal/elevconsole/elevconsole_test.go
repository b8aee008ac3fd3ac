package elevconsole

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"
)

// Replays a typed script, '\n' is Enter and '\b' is Backspace
type scriptedKeys struct {
	script []rune
}

func (sk *scriptedKeys) GetKey() (rune, keyboard.Key, error) {
	if len(sk.script) == 0 {
		return 0, 0, io.EOF
	}
	char := sk.script[0]
	sk.script = sk.script[1:]

	switch char {
	case '\n':
		return 0, keyboard.KeyEnter, nil
	case '\b':
		return 0, keyboard.KeyBackspace2, nil
	case ' ':
		return 0, keyboard.KeySpace, nil
	case 0x1B:
		return 0, keyboard.KeyEsc, nil
	}
	return char, 0, nil
}

type fakeController struct {
	hallCalls    []elevcall.HallKey
	carCalls     [][2]int
	outOfService []int
	restored     []int
}

func (fc *fakeController) SubmitHallCall(floor int, dirn elevconsts.Dirn) (elevcall.ID, error) {
	fc.hallCalls = append(fc.hallCalls, elevcall.HallKey{Floor: floor, Dirn: dirn})
	return elevcall.ID(len(fc.hallCalls)), nil
}

func (fc *fakeController) SubmitCarCall(carID int, floor int) (elevcall.ID, error) {
	if carID > 1 {
		return 0, elevdispatch.ErrUnknownCar
	}
	fc.carCalls = append(fc.carCalls, [2]int{carID, floor})
	return 100, nil
}

func (fc *fakeController) GetStatus(carID int) (elevcar.CarSnapshot, error) {
	return elevcar.CarSnapshot{ID: carID, CurrentFloor: 3, Status: elevconsts.Idle, InService: true}, nil
}

func (fc *fakeController) Snapshots() ([]elevcar.CarSnapshot, error) {
	return []elevcar.CarSnapshot{{ID: 0, CurrentFloor: 1, Status: elevconsts.Idle, InService: true}}, nil
}

func (fc *fakeController) CallStatus(id elevcall.ID) (elevdispatch.CallStatus, error) {
	return elevdispatch.CallStatus{}, elevdispatch.ErrUnknownCall
}

func (fc *fakeController) SetOutOfService(carID int) error {
	fc.outOfService = append(fc.outOfService, carID)
	return nil
}

func (fc *fakeController) Restore(carID int) error {
	fc.restored = append(fc.restored, carID)
	return nil
}

func (fc *fakeController) Unassigned() ([]elevcall.Call, error) {
	return nil, nil
}

func runScript(t *testing.T, script string) (*fakeController, string, error) {
	t.Helper()
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	controller := &fakeController{}
	var out bytes.Buffer
	console := NewConsole(&scriptedKeys{script: []rune(script)}, controller, 4, &out)
	err := console.Run(context.Background())
	return controller, out.String(), err
}

func TestConsoleRunsCommands(t *testing.T) {
	controller, output, err := runScript(t, "h 5 up\nc 1 7\no 0\nr 0\nq\n")
	if err != nil {
		t.Fatalf("Run() returned error %v", err)
	}

	if len(controller.hallCalls) != 1 || controller.hallCalls[0] != (elevcall.HallKey{Floor: 5, Dirn: elevconsts.Up}) {
		t.Errorf("Hall calls = %v, expected [{5 Up}]", controller.hallCalls)
	}
	if len(controller.carCalls) != 1 || controller.carCalls[0] != [2]int{1, 7} {
		t.Errorf("Car calls = %v, expected [[1 7]]", controller.carCalls)
	}
	if len(controller.outOfService) != 1 || len(controller.restored) != 1 {
		t.Errorf("Out of service %v, restored %v, expected car 0 once each", controller.outOfService, controller.restored)
	}
	if !strings.Contains(output, "hall call 1 submitted") || !strings.Contains(output, "car call 100 submitted") {
		t.Errorf("Output missing submissions:\n%s", output)
	}
}

func TestConsoleBackspace(t *testing.T) {
	controller, _, err := runScript(t, "h 4\b6 dowb\bn\n\x1b")
	if err != nil {
		t.Fatalf("Run() returned error %v", err)
	}
	if len(controller.hallCalls) != 1 || controller.hallCalls[0] != (elevcall.HallKey{Floor: 6, Dirn: elevconsts.Down}) {
		t.Errorf("Hall calls = %v, expected [{6 Down}]", controller.hallCalls)
	}
}

func TestConsoleReportsErrors(t *testing.T) {
	_, output, err := runScript(t, "c 5 1\ni 9\nfly\n")
	if !errors.Is(err, io.EOF) {
		t.Errorf("Run() returned %v, expected io.EOF once keys ran out", err)
	}
	for _, expected := range []string{"unknown car", "unknown call", "unknown command"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Output missing %q:\n%s", expected, output)
		}
	}
}

func TestConsoleStatus(t *testing.T) {
	_, output, _ := runScript(t, "s\ns 1\nq\n")

	if !strings.Contains(output, "car 0") || !strings.Contains(output, "car 1 floor=3") {
		t.Errorf("Status output unexpected:\n%s", output)
	}
}

func TestConsoleStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	controller := &fakeController{}
	console := NewConsole(&scriptedKeys{script: []rune("h 5 up\n")}, controller, 4, io.Discard)
	if err := console.Run(ctx); err != nil {
		t.Errorf("Run() returned %v, expected nil", err)
	}
	if len(controller.hallCalls) != 0 {
		t.Errorf("Cancelled console still submitted %v", controller.hallCalls)
	}
}
