package elevdispatch

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

var (
	ErrInvalidFloor     = errors.New("floor outside the building")
	ErrInvalidDirection = errors.New("invalid hall call direction")
	ErrUnknownCar       = errors.New("unknown car")
	ErrCarOutOfService  = errors.New("car is out of service")
	ErrUnknownCall      = errors.New("unknown call")
)

type Config struct {
	MaxFloor       int
	AgingThreshold time.Duration //wait before aging starts
	AgingRate      float64       //cost credited per second waited
}

// Where a live call currently sits
type CallStatus struct {
	Call     elevcall.Call `json:"call"`
	Assigned bool          `json:"assigned"`
	CarID    int           `json:"car_id"`
}

// Dispatcher owns the fleet and every live call. It is not safe for
// concurrent use: one goroutine must own it and serialise all calls, which
// makes each assignment decision see a consistent view of every car.
type Dispatcher struct {
	cars   []*elevcar.Car //indexed by car id
	config Config
	costFn CostFunction
	clock  Clock

	lastCallID elevcall.ID
	calls      map[elevcall.ID]elevcall.Call
	unassigned map[elevcall.ID]struct{}
	assigned   map[elevcall.ID]int
	hallCalls  map[elevcall.HallKey]elevcall.ID
	carStops   []map[int][]elevcall.ID //per car, floor -> calls served when doors open there

	events []elevevent.ElevatorEvent
}

// cars[i].ID must equal i
func NewDispatcher(cars []*elevcar.Car, config Config, costFn CostFunction, clock Clock) *Dispatcher {
	if costFn == nil {
		costFn = ScanCost{}
	}
	if clock == nil {
		clock = SystemClock{}
	}

	carStops := make([]map[int][]elevcall.ID, len(cars))
	for i := range carStops {
		carStops[i] = make(map[int][]elevcall.ID)
	}

	return &Dispatcher{
		cars:       cars,
		config:     config,
		costFn:     costFn,
		clock:      clock,
		calls:      make(map[elevcall.ID]elevcall.Call),
		unassigned: make(map[elevcall.ID]struct{}),
		assigned:   make(map[elevcall.ID]int),
		hallCalls:  make(map[elevcall.HallKey]elevcall.ID),
		carStops:   carStops,
	}
}

func (d *Dispatcher) NumCars() int {
	return len(d.cars)
}

func (d *Dispatcher) car(carID int) (*elevcar.Car, error) {
	if carID < 0 || carID >= len(d.cars) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCar, carID)
	}
	return d.cars[carID], nil
}

func (d *Dispatcher) validFloor(floor int) error {
	if floor < 0 || floor > d.config.MaxFloor {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidFloor, floor, d.config.MaxFloor)
	}
	return nil
}

func (d *Dispatcher) emit(value any) {
	d.events = append(d.events, elevevent.Wrap(value))
}

func (d *Dispatcher) newCallID() elevcall.ID {
	d.lastCallID++
	return d.lastCallID
}

// Submits a call made from a floor. An identical hall call that is still
// live absorbs the new one and its id is returned.
func (d *Dispatcher) SubmitHallCall(floor int, dirn elevconsts.Dirn) (elevcall.ID, error) {
	if err := d.validFloor(floor); err != nil {
		return 0, err
	}
	if !dirn.IsTravel() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDirection, dirn)
	}
	if (floor == 0 && dirn == elevconsts.Down) || (floor == d.config.MaxFloor && dirn == elevconsts.Up) {
		return 0, fmt.Errorf("%w: no %v call at floor %d", ErrInvalidDirection, dirn, floor)
	}

	key := elevcall.HallKey{Floor: floor, Dirn: dirn}
	if id, ok := d.hallCalls[key]; ok {
		Log.Debug().Uint64("call", uint64(id)).Msgf("Hall call floor %d %v merged into existing call", floor, dirn)
		return id, nil
	}

	call := elevcall.NewHallCall(d.newCallID(), floor, dirn, d.clock.Now())
	d.calls[call.ID] = call
	d.hallCalls[key] = call.ID
	d.unassigned[call.ID] = struct{}{}
	Log.Info().Uint64("call", uint64(call.ID)).Msgf("Hall call submitted: floor %d %v", floor, dirn)

	d.assignPending()
	d.holdIfUnassigned(call.ID)
	return call.ID, nil
}

// Submits a call made from inside a car. It always goes to that car.
func (d *Dispatcher) SubmitCarCall(carID int, floor int) (elevcall.ID, error) {
	car, err := d.car(carID)
	if err != nil {
		return 0, err
	}
	if err := d.validFloor(floor); err != nil {
		return 0, err
	}
	if !car.InService() {
		return 0, fmt.Errorf("%w: car %d", ErrCarOutOfService, carID)
	}

	for _, id := range d.carStops[carID][floor] {
		if d.calls[id].Kind == elevconsts.Car {
			return id, nil
		}
	}

	if !car.EnqueueCarStop(floor) {
		return 0, fmt.Errorf("%w: car %d refused floor %d", ErrCarOutOfService, carID, floor)
	}

	call := elevcall.NewCarCall(d.newCallID(), carID, floor, d.clock.Now())
	d.calls[call.ID] = call
	d.bookStop(call, carID)
	Log.Info().Uint64("call", uint64(call.ID)).Int("car", carID).Msgf("Car call submitted: floor %d", floor)
	d.emit(elevevent.CallAssignedEvent{CallID: call.ID, CarID: carID})
	return call.ID, nil
}

func (d *Dispatcher) bookStop(call elevcall.Call, carID int) {
	d.assigned[call.ID] = carID
	d.carStops[carID][call.Floor] = append(d.carStops[carID][call.Floor], call.ID)
}

func (d *Dispatcher) holdIfUnassigned(id elevcall.ID) {
	if _, ok := d.unassigned[id]; ok {
		Log.Info().Uint64("call", uint64(id)).Msg("No eligible car, call held")
		d.emit(elevevent.CallHeldEvent{CallID: id})
	}
}

type candidate struct {
	call    elevcall.Call
	carID   int
	cost    float64
	carIdle bool
}

type pair struct {
	callID elevcall.ID
	carID  int
}

func (c candidate) before(other candidate) bool {
	if c.cost != other.cost {
		return c.cost < other.cost
	}
	if c.carIdle != other.carIdle {
		return c.carIdle
	}
	if !c.call.SubmittedAt.Equal(other.call.SubmittedAt) {
		return c.call.SubmittedAt.Before(other.call.SubmittedAt)
	}
	if c.call.ID != other.call.ID {
		return c.call.ID < other.call.ID
	}
	return c.carID < other.carID
}

// Cost after the aging bonus. Calls that waited past the threshold get
// cheaper the longer they wait.
func (d *Dispatcher) effectiveCost(cost float64, call elevcall.Call, now time.Time) float64 {
	waited := call.Waited(now)
	if d.config.AgingRate <= 0 || waited < d.config.AgingThreshold {
		return cost
	}
	return cost - d.config.AgingRate*waited.Seconds()
}

func (d *Dispatcher) bestCandidate(now time.Time, rejected map[pair]bool) (candidate, bool) {
	snapshots := d.Snapshots()

	var best candidate
	found := false
	for id := range d.unassigned {
		call := d.calls[id]
		for _, snapshot := range snapshots {
			if rejected[pair{callID: id, carID: snapshot.ID}] {
				continue
			}
			cost, eligible := d.costFn.Cost(snapshot, call)
			if !eligible {
				continue
			}
			current := candidate{
				call:    call,
				carID:   snapshot.ID,
				cost:    d.effectiveCost(cost, call, now),
				carIdle: snapshot.Status == elevconsts.Idle,
			}
			if !found || current.before(best) {
				best = current
				found = true
			}
		}
	}
	return best, found
}

// Assigns unassigned calls until no call has an eligible car left, cheapest
// pair first
func (d *Dispatcher) assignPending() {
	if len(d.unassigned) == 0 {
		return
	}
	now := d.clock.Now()
	rejected := make(map[pair]bool)

	for len(d.unassigned) > 0 {
		best, found := d.bestCandidate(now, rejected)
		if !found {
			return
		}

		if !d.cars[best.carID].EnqueueStop(best.call.Floor, best.call.Dirn) {
			Log.Debug().Uint64("call", uint64(best.call.ID)).Int("car", best.carID).Msg("Car refused call, trying elsewhere")
			rejected[pair{callID: best.call.ID, carID: best.carID}] = true
			continue
		}

		delete(d.unassigned, best.call.ID)
		d.bookStop(best.call, best.carID)
		Log.Info().Uint64("call", uint64(best.call.ID)).Int("car", best.carID).Msgf("Assigned %v with cost %.2f", best.call, best.cost)
		d.emit(elevevent.CallAssignedEvent{CallID: best.call.ID, CarID: best.carID})
	}
}

// Every call booked at the floor where doors opened is done
func (d *Dispatcher) serve(carID int, floor int) {
	for _, id := range d.carStops[carID][floor] {
		call := d.calls[id]
		if call.IsHall() && d.hallCalls[call.Key()] == id {
			delete(d.hallCalls, call.Key())
		}
		delete(d.calls, id)
		delete(d.assigned, id)
		Log.Info().Uint64("call", uint64(id)).Int("car", carID).Msgf("Served at floor %d", floor)
		d.emit(elevevent.CallServedEvent{CallID: id, CarID: carID, Floor: floor})
	}
	delete(d.carStops[carID], floor)
}

func (d *Dispatcher) handleCarEvents(events []elevevent.ElevatorEvent) {
	retry := false
	for _, event := range events {
		d.events = append(d.events, event)
		if opened, ok := event.Value.(elevevent.DoorsOpenedEvent); ok {
			d.serve(opened.CarID, opened.Floor)
		}
		if event.IsRetryTrigger() {
			retry = true
		}
	}
	if retry {
		d.assignPending()
	}
}

// Advances one car by a single step and processes what happened
func (d *Dispatcher) StepCar(carID int) ([]elevevent.ElevatorEvent, error) {
	car, err := d.car(carID)
	if err != nil {
		return nil, err
	}
	events := car.Step()
	d.handleCarEvents(events)
	return events, nil
}

// Turns a released stop back into an unassigned call. Car calls become hall
// calls travelling the way the car would have carried them. Returns false
// when the call merged into a live hall call instead.
func (d *Dispatcher) requeue(id elevcall.ID, dirn elevconsts.Dirn) bool {
	call := d.calls[id]
	delete(d.assigned, id)

	if !call.IsHall() {
		if dirn == elevconsts.Stop {
			dirn = elevconsts.Up
			if call.Floor == d.config.MaxFloor {
				dirn = elevconsts.Down
			}
		}
		call = call.AsHallCall(dirn)
		if existing, ok := d.hallCalls[call.Key()]; ok && existing != id {
			Log.Debug().Uint64("call", uint64(id)).Uint64("into", uint64(existing)).Msg("Released car call merged into live hall call")
			delete(d.calls, id)
			return false
		}
		d.calls[id] = call
		d.hallCalls[call.Key()] = id
	}

	d.unassigned[id] = struct{}{}
	return true
}

// Takes a car out of service and hands its pending calls to the other cars.
// Doors already open at the current floor finish first.
func (d *Dispatcher) SetOutOfService(carID int) error {
	car, err := d.car(carID)
	if err != nil {
		return err
	}
	if !car.InService() {
		return nil
	}

	var requeued []elevcall.ID
	for _, stop := range car.SetOutOfService() {
		for _, id := range d.carStops[carID][stop.Floor] {
			if d.requeue(id, stop.Dirn) {
				requeued = append(requeued, id)
			}
		}
		delete(d.carStops[carID], stop.Floor)
	}
	Log.Warn().Int("car", carID).Msgf("Car out of service, %d calls requeued", len(requeued))
	d.emit(elevevent.CarOutOfServiceEvent{CarID: carID})

	d.assignPending()
	for _, id := range requeued {
		d.holdIfUnassigned(id)
	}
	return nil
}

func (d *Dispatcher) Restore(carID int) error {
	car, err := d.car(carID)
	if err != nil {
		return err
	}
	if !car.Restore() {
		return nil
	}
	d.emit(elevevent.CarRestoredEvent{CarID: carID})
	d.assignPending()
	return nil
}

func (d *Dispatcher) Status(carID int) (elevcar.CarSnapshot, error) {
	car, err := d.car(carID)
	if err != nil {
		return elevcar.CarSnapshot{}, err
	}
	return car.Snapshot(), nil
}

// Snapshots of every car, in car id order
func (d *Dispatcher) Snapshots() []elevcar.CarSnapshot {
	snapshots := make([]elevcar.CarSnapshot, len(d.cars))
	for i, car := range d.cars {
		snapshots[i] = car.Snapshot()
	}
	return snapshots
}

func (d *Dispatcher) CallStatus(id elevcall.ID) (CallStatus, error) {
	call, ok := d.calls[id]
	if !ok {
		return CallStatus{}, fmt.Errorf("%w: %d", ErrUnknownCall, id)
	}
	if carID, ok := d.assigned[id]; ok {
		return CallStatus{Call: call, Assigned: true, CarID: carID}, nil
	}
	return CallStatus{Call: call, CarID: elevcall.NO_CAR}, nil
}

// Calls waiting for an eligible car, oldest first
func (d *Dispatcher) Unassigned() []elevcall.Call {
	calls := make([]elevcall.Call, 0, len(d.unassigned))
	for id := range d.unassigned {
		calls = append(calls, d.calls[id])
	}
	slices.SortFunc(calls, func(a, b elevcall.Call) int {
		if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return calls
}

// Returns the events produced since the last drain, oldest first
func (d *Dispatcher) DrainEvents() []elevevent.ElevatorEvent {
	events := d.events
	d.events = nil
	return events
}
