package elevconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Could not write %s: %v", path, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("Default().Validate() returned %v, expected nil", err)
	}
	if config.MaxFloor() != 9 {
		t.Errorf("Default().MaxFloor() = %d, expected 9", config.MaxFloor())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*BankConfig)
		expected error
	}{
		{"zero cars", func(bc *BankConfig) { bc.NumCars = 0 }, ErrNoCars},
		{"zero floors", func(bc *BankConfig) { bc.NumFloors = 0 }, ErrNoFloors},
		{"negative floors", func(bc *BankConfig) { bc.NumFloors = -3 }, ErrNoFloors},
		{"zero dwell", func(bc *BankConfig) { bc.DoorDwellSteps = 0 }, ErrInvalidDwell},
		{"zero step interval", func(bc *BankConfig) { bc.StepInterval = 0 }, ErrInvalidStepInterval},
		{"negative aging rate", func(bc *BankConfig) { bc.AgingRate = -1 }, ErrInvalidAging},
		{"initial floor above top", func(bc *BankConfig) { bc.InitialFloor = 10 }, ErrInvalidInitialFloor},
		{"too few initial floors", func(bc *BankConfig) { bc.InitialFloors = []int{0} }, ErrInvalidInitialFloor},
		{"car initial floor below ground", func(bc *BankConfig) { bc.InitialFloors = []int{0, -1} }, ErrInvalidInitialFloor},
	}

	for _, test := range tests {
		config := Default()
		test.modify(&config)
		if err := config.Validate(); !errors.Is(err, test.expected) {
			t.Errorf("%s: Validate() returned %v, expected %v", test.name, err, test.expected)
		}
	}
}

func TestCarInitialFloor(t *testing.T) {
	config := Default()
	config.InitialFloor = 2
	if config.CarInitialFloor(1) != 2 {
		t.Errorf("CarInitialFloor(1) = %d, expected 2", config.CarInitialFloor(1))
	}

	config.InitialFloors = []int{0, 9}
	if config.CarInitialFloor(0) != 0 || config.CarInitialFloor(1) != 9 {
		t.Errorf("CarInitialFloor() = %d, %d, expected 0, 9", config.CarInitialFloor(0), config.CarInitialFloor(1))
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() returned %v, expected nil", err)
	}
}

func TestLoad(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	path := writeFile(t, "bank.yaml", `
identifier: tower-a
numFloors: 16
numCars: 4
stepInterval: 250ms
agingThreshold: 1m
agingRate: 2.5
initialFloors: [0, 5, 10, 15]
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error %v", err)
	}
	if config.Identifier != "tower-a" || config.NumFloors != 16 || config.NumCars != 4 {
		t.Errorf("Load() = %+v, expected tower-a with 16 floors and 4 cars", config)
	}
	if config.StepInterval != 250*time.Millisecond || config.AgingThreshold != time.Minute || config.AgingRate != 2.5 {
		t.Errorf("Load() timing = %v %v %v, expected 250ms 1m0s 2.5", config.StepInterval, config.AgingThreshold, config.AgingRate)
	}
	if config.CarInitialFloor(3) != 15 {
		t.Errorf("Load() car 3 initial floor = %d, expected 15", config.CarInitialFloor(3))
	}
	if config.DoorDwellSteps != Default().DoorDwellSteps || config.LogLevel != DEFAULT_LOG_LEVEL {
		t.Errorf("Load() did not keep defaults for missing fields: %+v", config)
	}
}

func TestLoadErrors(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() of missing file returned %v, expected os.ErrNotExist", err)
	}

	path := writeFile(t, "bad.yaml", "numCars: [1, 2\n")
	if _, err := Load(path); err == nil {
		t.Errorf("Load() of malformed yaml returned nil error")
	}
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", `ELEVATOR_IDENTIFIER=lobby
ELEVATOR_NUM_CARS=3
ELEVATOR_STEP_INTERVAL=100ms
ELEVATOR_AGING_RATE=0.25
ELEVATOR_BROADCAST_ADDRESS=127.0.0.1:20020
`)

	config, err := LoadEnv(Default(), path)
	if err != nil {
		t.Fatalf("LoadEnv() returned error %v", err)
	}
	if config.Identifier != "lobby" || config.NumCars != 3 || config.StepInterval != 100*time.Millisecond {
		t.Errorf("LoadEnv() = %+v, expected lobby with 3 cars stepping every 100ms", config)
	}
	if config.AgingRate != 0.25 || config.BroadcastAddress != "127.0.0.1:20020" {
		t.Errorf("LoadEnv() = %+v, expected aging rate 0.25 broadcasting to 127.0.0.1:20020", config)
	}
	if config.NumFloors != Default().NumFloors {
		t.Errorf("LoadEnv() changed NumFloors to %d without a key", config.NumFloors)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []map[string]string{
		{"ELEVATOR_NUM_FLOORS": "ten"},
		{"ELEVATOR_STEP_INTERVAL": "fast"},
		{"ELEVATOR_AGING_RATE": "high"},
	}

	for _, env := range tests {
		if _, err := ApplyEnv(Default(), env); err == nil {
			t.Errorf("ApplyEnv(%v) returned nil error", env)
		}
	}
}
