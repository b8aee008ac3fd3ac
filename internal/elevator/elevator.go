package elevator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevcmd"
	"github.com/dinaMadelen/elevdispatch/internal/elevconfig"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/elevmetadata"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

const (
	EVENT_CHANNEL_SIZE   = 256
	COMMAND_CHANNEL_SIZE = 16
)

var (
	ErrNotRunning     = errors.New("bank is not running")
	ErrManualStepping = errors.New("cars are stepped by their own workers, manual stepping is disabled")
)

type Option func(*Bank)

// Cars only move when StepCar or StepAll is called
func WithManualStepping() Option {
	return func(b *Bank) {
		b.manualStepping = true
	}
}

func WithClock(clock elevdispatch.Clock) Option {
	return func(b *Bank) {
		b.clock = clock
	}
}

func WithCostFunction(costFn elevdispatch.CostFunction) Option {
	return func(b *Bank) {
		b.costFn = costFn
	}
}

// Bank is the composition root of one elevator bank. A single dispatcher
// goroutine owns every car and call; all operations are commands sent to it.
type Bank struct {
	MetaData *elevmetadata.BankMetaData //this contains all bank constant metadata
	Config   elevconfig.BankConfig

	dispatcher     *elevdispatch.Dispatcher
	eventChannel   chan elevevent.ElevatorEvent
	commandChannel chan elevcmd.ElevatorCommand

	clock          elevdispatch.Clock
	costFn         elevdispatch.CostFunction
	manualStepping bool

	mu      sync.Mutex
	running bool
	doneCh  chan struct{} //closed when the dispatcher goroutine exits

	//used for graceful shutdown
	waitGroupArray []*sync.WaitGroup
	cancelArray    []context.CancelFunc
}

func NewBank(config elevconfig.BankConfig, metaData *elevmetadata.BankMetaData, options ...Option) (*Bank, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bank config: %w", err)
	}

	bank := &Bank{
		MetaData:       metaData,
		Config:         config,
		eventChannel:   make(chan elevevent.ElevatorEvent, EVENT_CHANNEL_SIZE),
		commandChannel: make(chan elevcmd.ElevatorCommand, COMMAND_CHANNEL_SIZE),
		clock:          elevdispatch.SystemClock{},
		costFn:         elevdispatch.ScanCost{},
	}
	for _, option := range options {
		option(bank)
	}

	cars := make([]*elevcar.Car, config.NumCars)
	for i := range cars {
		cars[i] = elevcar.NewCar(i, config.CarInitialFloor(i), config.MaxFloor(), config.DoorDwellSteps)
	}
	dispatcherConfig := elevdispatch.Config{
		MaxFloor:       config.MaxFloor(),
		AgingThreshold: config.AgingThreshold,
		AgingRate:      config.AgingRate,
	}
	bank.dispatcher = elevdispatch.NewDispatcher(cars, dispatcherConfig, bank.costFn, bank.clock)

	return bank, nil
}

func (b *Bank) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		Log.Error().Msg("Bank already running")
		return
	}
	b.doneCh = make(chan struct{})

	//Launch Threads One By One
	ctxDispatcher, cancelDispatcher := context.WithCancel(context.Background())
	wgDispatcher := &sync.WaitGroup{}
	b.waitGroupArray = append(b.waitGroupArray, wgDispatcher)
	b.runDispatcher(ctxDispatcher, wgDispatcher, b.doneCh)
	b.cancelArray = append(b.cancelArray, cancelDispatcher)

	if !b.manualStepping {
		ctxCars, cancelCars := context.WithCancel(context.Background())
		wgCars := &sync.WaitGroup{}
		b.waitGroupArray = append(b.waitGroupArray, wgCars)
		for carID := 0; carID < b.Config.NumCars; carID++ {
			b.runCarWorker(ctxCars, wgCars, carID)
		}
		b.cancelArray = append(b.cancelArray, cancelCars)
	}

	b.running = true
	Log.Info().Msgf("Bank %s started with %d cars over %d floors", b.identifier(), b.Config.NumCars, b.Config.NumFloors)
}

func (b *Bank) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		Log.Error().Msg("Bank not running, so cannot stop bank")
		return
	}

	Log.Debug().Msg("Stopping Bank")

	//Gracefully shutdown all threads one by one
	for i := len(b.cancelArray) - 1; i >= 0; i-- {
		b.cancelArray[i]()
		b.waitGroupArray[i].Wait()
	}
	b.cancelArray = nil
	b.waitGroupArray = nil

	Log.Debug().Msg("Stopped Bank")
	b.running = false
}

func (b *Bank) identifier() string {
	if b.MetaData == nil {
		return ""
	}
	return b.MetaData.Identifier
}

// Outward events in the order they happened. Events are dropped when nobody
// keeps up with the channel.
func (b *Bank) Events() <-chan elevevent.ElevatorEvent {
	return b.eventChannel
}

func (b *Bank) NumCars() int {
	return b.Config.NumCars
}

func (b *Bank) runDispatcher(ctx context.Context, waitGroup *sync.WaitGroup, doneCh chan struct{}) {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		defer close(doneCh)
		for {
			select {
			case <-ctx.Done():
				Log.Warn().Msgf("Dispatcher Go routine has been signaled to stop")
				return
			case command := <-b.commandChannel:
				reply, value, err := b.handleCommand(command)
				b.publish(b.dispatcher.DrainEvents())
				elevcmd.Respond(reply, value, err)
			}
		}
	}()
}

// Steps one car every StepInterval. The step itself runs on the dispatcher
// goroutine like every other state change.
func (b *Bank) runCarWorker(ctx context.Context, waitGroup *sync.WaitGroup, carID int) {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		ticker := time.NewTicker(b.Config.StepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				Log.Debug().Int("car", carID).Msg("Car worker has been signaled to stop")
				return
			case <-ticker.C:
				select {
				case b.commandChannel <- elevcmd.ElevatorCommand{Value: elevcmd.StepCommand{CarID: carID}}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Runs a command against the dispatcher. The reply is sent by the caller
// once the events the command produced are published.
func (b *Bank) handleCommand(command elevcmd.ElevatorCommand) (chan elevcmd.Reply, any, error) {
	d := b.dispatcher

	switch cmd := command.Value.(type) {
	case elevcmd.SubmitHallCallCommand:
		id, err := d.SubmitHallCall(cmd.Floor, cmd.Dirn)
		return cmd.Reply, id, err
	case elevcmd.SubmitCarCallCommand:
		id, err := d.SubmitCarCall(cmd.CarID, cmd.Floor)
		return cmd.Reply, id, err
	case elevcmd.StatusCommand:
		snapshot, err := d.Status(cmd.CarID)
		return cmd.Reply, snapshot, err
	case elevcmd.StatusAllCommand:
		return cmd.Reply, d.Snapshots(), nil
	case elevcmd.CallStatusCommand:
		status, err := d.CallStatus(cmd.CallID)
		return cmd.Reply, status, err
	case elevcmd.OutOfServiceCommand:
		return cmd.Reply, nil, d.SetOutOfService(cmd.CarID)
	case elevcmd.RestoreCommand:
		return cmd.Reply, nil, d.Restore(cmd.CarID)
	case elevcmd.StepCommand:
		events, err := d.StepCar(cmd.CarID)
		if err != nil {
			Log.Error().Err(err).Int("car", cmd.CarID).Msg("Error stepping car")
		}
		return cmd.Reply, events, err
	case elevcmd.UnassignedCommand:
		return cmd.Reply, d.Unassigned(), nil
	}
	Log.Error().Msgf("Unknown command %s", command.CommandType())
	return nil, nil, nil
}

func (b *Bank) publish(events []elevevent.ElevatorEvent) {
	for _, event := range events {
		select {
		case b.eventChannel <- event:
		default:
			Log.Warn().Msgf("Event channel full, dropped %s event", event.EventType())
		}
	}
}

// Sends a command to the dispatcher goroutine and waits for its reply
func (b *Bank) send(command any, reply chan elevcmd.Reply) (any, error) {
	b.mu.Lock()
	running, doneCh := b.running, b.doneCh
	b.mu.Unlock()

	if !running {
		return nil, ErrNotRunning
	}

	select {
	case b.commandChannel <- elevcmd.ElevatorCommand{Value: command}:
	case <-doneCh:
		return nil, ErrNotRunning
	}

	select {
	case r := <-reply:
		return r.Value, r.Err
	case <-doneCh:
		return nil, ErrNotRunning
	}
}

func request[T any](b *Bank, command any, reply chan elevcmd.Reply) (T, error) {
	var result T
	value, err := b.send(command, reply)
	if value != nil {
		result, _ = value.(T)
	}
	return result, err
}

func newReply() chan elevcmd.Reply {
	return make(chan elevcmd.Reply, 1)
}

func (b *Bank) SubmitHallCall(floor int, dirn elevconsts.Dirn) (elevcall.ID, error) {
	reply := newReply()
	return request[elevcall.ID](b, elevcmd.SubmitHallCallCommand{Floor: floor, Dirn: dirn, Reply: reply}, reply)
}

func (b *Bank) SubmitCarCall(carID int, floor int) (elevcall.ID, error) {
	reply := newReply()
	return request[elevcall.ID](b, elevcmd.SubmitCarCallCommand{CarID: carID, Floor: floor, Reply: reply}, reply)
}

func (b *Bank) GetStatus(carID int) (elevcar.CarSnapshot, error) {
	reply := newReply()
	return request[elevcar.CarSnapshot](b, elevcmd.StatusCommand{CarID: carID, Reply: reply}, reply)
}

// Status of every car, in car id order
func (b *Bank) Snapshots() ([]elevcar.CarSnapshot, error) {
	reply := newReply()
	return request[[]elevcar.CarSnapshot](b, elevcmd.StatusAllCommand{Reply: reply}, reply)
}

func (b *Bank) CallStatus(id elevcall.ID) (elevdispatch.CallStatus, error) {
	reply := newReply()
	return request[elevdispatch.CallStatus](b, elevcmd.CallStatusCommand{CallID: id, Reply: reply}, reply)
}

func (b *Bank) SetOutOfService(carID int) error {
	reply := newReply()
	_, err := b.send(elevcmd.OutOfServiceCommand{CarID: carID, Reply: reply}, reply)
	return err
}

func (b *Bank) Restore(carID int) error {
	reply := newReply()
	_, err := b.send(elevcmd.RestoreCommand{CarID: carID, Reply: reply}, reply)
	return err
}

// Calls waiting for an eligible car, oldest first
func (b *Bank) Unassigned() ([]elevcall.Call, error) {
	reply := newReply()
	return request[[]elevcall.Call](b, elevcmd.UnassignedCommand{Reply: reply}, reply)
}

// Advances one car by a single step. Only for banks created with
// WithManualStepping.
func (b *Bank) StepCar(carID int) ([]elevevent.ElevatorEvent, error) {
	if !b.manualStepping {
		return nil, ErrManualStepping
	}
	reply := newReply()
	return request[[]elevevent.ElevatorEvent](b, elevcmd.StepCommand{CarID: carID, Reply: reply}, reply)
}

// Steps every car once, in car id order
func (b *Bank) StepAll() error {
	for carID := 0; carID < b.Config.NumCars; carID++ {
		if _, err := b.StepCar(carID); err != nil {
			return err
		}
	}
	return nil
}
