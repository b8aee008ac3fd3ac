package elevscenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevconfig"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/dinaMadelen/elevdispatch/internal/elevator"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/elevmetadata"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"gopkg.in/yaml.v3"
)

var Log = logger.GetLogger()

var ErrInvalidScenario = errors.New("invalid scenario")

const DEFAULT_TICK_DURATION = time.Second

var START_TIME = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type HallAction struct {
	Floor int             `yaml:"floor"`
	Dirn  elevconsts.Dirn `yaml:"dirn"`
}

type CarAction struct {
	Car   int `yaml:"car"`
	Floor int `yaml:"floor"`
}

// Something that happens before the cars step at tick At. Exactly one of
// the action fields is set.
type Action struct {
	At           int         `yaml:"at"`
	Hall         *HallAction `yaml:"hall"`
	Car          *CarAction  `yaml:"car"`
	OutOfService *int        `yaml:"outOfService"`
	Restore      *int        `yaml:"restore"`
}

type Scenario struct {
	Bank         elevconfig.BankConfig `yaml:"bank"`
	Steps        int                   `yaml:"steps"`
	TickDuration time.Duration         `yaml:"tickDuration"` //simulated time per tick
	Actions      []Action              `yaml:"actions"`
}

type Result struct {
	Submitted int
	Rejected  int
	Served    int
	Events    []elevevent.ElevatorEvent
}

func Load(path string) (Scenario, error) {
	scenario := Scenario{Bank: elevconfig.Default(), TickDuration: DEFAULT_TICK_DURATION}

	file, err := os.Open(path)
	if err != nil {
		return scenario, fmt.Errorf("opening scenario: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&scenario); err != nil {
		return scenario, fmt.Errorf("decoding scenario %s: %w", path, err)
	}
	return scenario, scenario.Validate()
}

func (s Scenario) Validate() error {
	if err := s.Bank.Validate(); err != nil {
		return err
	}
	if s.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidScenario, s.Steps)
	}
	if s.TickDuration <= 0 {
		return fmt.Errorf("%w: tick duration must be positive, got %v", ErrInvalidScenario, s.TickDuration)
	}

	for i, action := range s.Actions {
		if action.At < 0 || action.At >= s.Steps {
			return fmt.Errorf("%w: action %d at tick %d outside [0, %d)", ErrInvalidScenario, i, action.At, s.Steps)
		}
		set := 0
		for _, present := range []bool{action.Hall != nil, action.Car != nil, action.OutOfService != nil, action.Restore != nil} {
			if present {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("%w: action %d must do exactly one thing, does %d", ErrInvalidScenario, i, set)
		}
	}
	return nil
}

// Drives a manually stepped bank through a scenario on a simulated clock
type Runner struct {
	Bank     *elevator.Bank
	Clock    *elevdispatch.ManualClock
	Scenario Scenario
}

func NewRunner(scenario Scenario, metaData *elevmetadata.BankMetaData) (*Runner, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	clock := elevdispatch.NewManualClock(START_TIME)
	bank, err := elevator.NewBank(scenario.Bank, metaData, elevator.WithManualStepping(), elevator.WithClock(clock))
	if err != nil {
		return nil, err
	}
	return &Runner{Bank: bank, Clock: clock, Scenario: scenario}, nil
}

// Runs every tick: apply the tick's actions, step all cars, advance the
// clock. onTick (may be nil) sees the events of each tick.
func (r *Runner) Run(onTick func(tick int, events []elevevent.ElevatorEvent)) (Result, error) {
	var result Result

	r.Bank.Start()
	defer r.Bank.Stop()

	for tick := 0; tick < r.Scenario.Steps; tick++ {
		for _, action := range r.Scenario.Actions {
			if action.At == tick {
				r.apply(action, &result)
			}
		}

		if err := r.Bank.StepAll(); err != nil {
			return result, fmt.Errorf("stepping tick %d: %w", tick, err)
		}
		r.Clock.Advance(r.Scenario.TickDuration)

		events := r.drainEvents()
		for _, event := range events {
			if _, ok := event.Value.(elevevent.CallServedEvent); ok {
				result.Served++
			}
		}
		result.Events = append(result.Events, events...)
		if onTick != nil {
			onTick(tick, events)
		}
	}
	return result, nil
}

func (r *Runner) apply(action Action, result *Result) {
	var err error

	switch {
	case action.Hall != nil:
		_, err = r.Bank.SubmitHallCall(action.Hall.Floor, action.Hall.Dirn)
		result.Submitted++
	case action.Car != nil:
		_, err = r.Bank.SubmitCarCall(action.Car.Car, action.Car.Floor)
		result.Submitted++
	case action.OutOfService != nil:
		err = r.Bank.SetOutOfService(*action.OutOfService)
	case action.Restore != nil:
		err = r.Bank.Restore(*action.Restore)
	}

	if err != nil {
		Log.Warn().Err(err).Int("tick", action.At).Msg("Scenario action rejected")
		result.Rejected++
	}
}

func (r *Runner) drainEvents() []elevevent.ElevatorEvent {
	var events []elevevent.ElevatorEvent
	for {
		select {
		case event := <-r.Bank.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}
