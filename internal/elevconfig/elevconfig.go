package elevconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var Log = logger.GetLogger()

var (
	ErrNoCars              = errors.New("bank needs at least one car")
	ErrNoFloors            = errors.New("bank needs at least two floors")
	ErrInvalidDwell        = errors.New("door dwell must be at least one step")
	ErrInvalidStepInterval = errors.New("step interval must be positive")
	ErrInvalidAging        = errors.New("aging threshold and rate must not be negative")
	ErrInvalidInitialFloor = errors.New("initial floor outside the building")
)

const (
	DEFAULT_STEP_INTERVAL   = 1 * time.Second
	DEFAULT_AGING_THRESHOLD = 30 * time.Second
	DEFAULT_AGING_RATE      = 0.5
	DEFAULT_LOG_LEVEL       = "info"
)

// Fixed for the life of the process
type BankConfig struct {
	Identifier       string        `yaml:"identifier"`
	NumFloors        int           `yaml:"numFloors"`
	NumCars          int           `yaml:"numCars"`
	StepInterval     time.Duration `yaml:"stepInterval"` //one floor of travel or one dwell tick
	DoorDwellSteps   int           `yaml:"doorDwellSteps"`
	AgingThreshold   time.Duration `yaml:"agingThreshold"`
	AgingRate        float64       `yaml:"agingRate"` //cost credited per second waited
	InitialFloor     int           `yaml:"initialFloor"`
	InitialFloors    []int         `yaml:"initialFloors"` //per car, overrides InitialFloor when set
	LogLevel         string        `yaml:"logLevel"`
	BroadcastAddress string        `yaml:"broadcastAddress"` //empty disables event broadcast
}

func Default() BankConfig {
	return BankConfig{
		NumFloors:      elevconsts.DEFAULT_NUM_FLOORS,
		NumCars:        elevconsts.DEFAULT_NUM_CARS,
		StepInterval:   DEFAULT_STEP_INTERVAL,
		DoorDwellSteps: elevconsts.DEFAULT_DOOR_DWELL_STEPS,
		AgingThreshold: DEFAULT_AGING_THRESHOLD,
		AgingRate:      DEFAULT_AGING_RATE,
		LogLevel:       DEFAULT_LOG_LEVEL,
	}
}

// Highest valid floor number
func (bc BankConfig) MaxFloor() int {
	return bc.NumFloors - 1
}

func (bc BankConfig) CarInitialFloor(carID int) int {
	if carID >= 0 && carID < len(bc.InitialFloors) {
		return bc.InitialFloors[carID]
	}
	return bc.InitialFloor
}

func (bc BankConfig) Validate() error {
	if bc.NumCars < 1 {
		return fmt.Errorf("%w: got %d", ErrNoCars, bc.NumCars)
	}
	if bc.NumFloors < 2 {
		return fmt.Errorf("%w: got %d", ErrNoFloors, bc.NumFloors)
	}
	if bc.DoorDwellSteps < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDwell, bc.DoorDwellSteps)
	}
	if bc.StepInterval <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidStepInterval, bc.StepInterval)
	}
	if bc.AgingThreshold < 0 || bc.AgingRate < 0 {
		return fmt.Errorf("%w: threshold %v rate %v", ErrInvalidAging, bc.AgingThreshold, bc.AgingRate)
	}
	if bc.InitialFloor < 0 || bc.InitialFloor > bc.MaxFloor() {
		return fmt.Errorf("%w: %d", ErrInvalidInitialFloor, bc.InitialFloor)
	}
	if len(bc.InitialFloors) > 0 && len(bc.InitialFloors) != bc.NumCars {
		return fmt.Errorf("%w: %d initial floors for %d cars", ErrInvalidInitialFloor, len(bc.InitialFloors), bc.NumCars)
	}
	for carID, floor := range bc.InitialFloors {
		if floor < 0 || floor > bc.MaxFloor() {
			return fmt.Errorf("%w: car %d at %d", ErrInvalidInitialFloor, carID, floor)
		}
	}
	return nil
}

// Reads a YAML file on top of the defaults. Fields missing from the file
// keep their default value.
func Load(path string) (BankConfig, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return config, fmt.Errorf("decoding config %s: %w", path, err)
	}
	Log.Debug().Msgf("Loaded config from %s", path)
	return config, nil
}

// Reads a .env file and applies its ELEVATOR_* keys to config
func LoadEnv(config BankConfig, path string) (BankConfig, error) {
	envFile, err := godotenv.Read(path)
	if err != nil {
		return config, fmt.Errorf("reading env file: %w", err)
	}
	return ApplyEnv(config, envFile)
}

func ApplyEnv(config BankConfig, env map[string]string) (BankConfig, error) {
	var err error

	if value, ok := env["ELEVATOR_IDENTIFIER"]; ok {
		config.Identifier = value
	}
	if value, ok := env["ELEVATOR_LOG_LEVEL"]; ok {
		config.LogLevel = value
	}
	if value, ok := env["ELEVATOR_BROADCAST_ADDRESS"]; ok {
		config.BroadcastAddress = value
	}

	ints := map[string]*int{
		"ELEVATOR_NUM_FLOORS":       &config.NumFloors,
		"ELEVATOR_NUM_CARS":         &config.NumCars,
		"ELEVATOR_DOOR_DWELL_STEPS": &config.DoorDwellSteps,
		"ELEVATOR_INITIAL_FLOOR":    &config.InitialFloor,
	}
	for key, field := range ints {
		value, ok := env[key]
		if !ok {
			continue
		}
		if *field, err = strconv.Atoi(value); err != nil {
			return config, fmt.Errorf("converting %s: %w", key, err)
		}
	}

	durations := map[string]*time.Duration{
		"ELEVATOR_STEP_INTERVAL":   &config.StepInterval,
		"ELEVATOR_AGING_THRESHOLD": &config.AgingThreshold,
	}
	for key, field := range durations {
		value, ok := env[key]
		if !ok {
			continue
		}
		if *field, err = time.ParseDuration(value); err != nil {
			return config, fmt.Errorf("converting %s: %w", key, err)
		}
	}

	if value, ok := env["ELEVATOR_AGING_RATE"]; ok {
		if config.AgingRate, err = strconv.ParseFloat(value, 64); err != nil {
			return config, fmt.Errorf("converting ELEVATOR_AGING_RATE: %w", err)
		}
	}
	return config, nil
}
