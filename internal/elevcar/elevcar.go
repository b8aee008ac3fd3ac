package elevcar

import (
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/dinaMadelen/elevdispatch/internal/elevevent"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

// A stop handed back when the car leaves service. Dirn is the sweep set
// the floor sat in, Stop for a pending door request at the current floor.
type ReleasedStop struct {
	Floor int
	Dirn  elevconsts.Dirn
}

// Car is one elevator. It is not safe for concurrent use, the owner
// serialises every call.
type Car struct {
	ID int

	floor    int
	maxFloor int
	dirn     elevconsts.Dirn
	status   elevconsts.CarStatus

	upStops   StopSet
	downStops StopSet

	//Internal Variables
	doorDwellSteps int
	dwellRemaining int
	doorRequest    bool //open (or reopen) doors at the current floor on next step
	leavingService bool //out of service requested while doors were open
}

func NewCar(id int, initialFloor int, maxFloor int, doorDwellSteps int) *Car {
	if doorDwellSteps < 1 {
		doorDwellSteps = 1
	}
	return &Car{
		ID:             id,
		floor:          initialFloor,
		maxFloor:       maxFloor,
		dirn:           elevconsts.Stop,
		status:         elevconsts.Idle,
		doorDwellSteps: doorDwellSteps,
	}
}

func (c *Car) Floor() int {
	return c.floor
}

func (c *Car) Dirn() elevconsts.Dirn {
	return c.dirn
}

func (c *Car) Status() elevconsts.CarStatus {
	return c.status
}

// False once out of service was requested, even while doors finish their dwell
func (c *Car) InService() bool {
	return c.status != elevconsts.OutOfService && !c.leavingService
}

func (c *Car) stops(dirn elevconsts.Dirn) *StopSet {
	if dirn == elevconsts.Down {
		return &c.downStops
	}
	return &c.upStops
}

// Strictly ahead of the car in its current direction
func (c *Car) isAhead(floor int) bool {
	switch c.dirn {
	case elevconsts.Up:
		return floor > c.floor
	case elevconsts.Down:
		return floor < c.floor
	}
	return false
}

func (c *Car) directionTo(floor int) elevconsts.Dirn {
	switch {
	case floor > c.floor:
		return elevconsts.Up
	case floor < c.floor:
		return elevconsts.Down
	}
	return elevconsts.Stop
}

func (c *Car) validFloor(floor int) bool {
	return floor >= 0 && floor <= c.maxFloor
}

// An idle car takes any floor and heads for it
func (c *Car) adopt(floor int) {
	dirn := c.directionTo(floor)
	if dirn == elevconsts.Stop {
		c.doorRequest = true
		return
	}
	c.stops(dirn).Add(floor)
	c.dirn = dirn
	c.status = elevconsts.Moving
	Log.Debug().Int("car", c.ID).Msgf("Idle car heading %v to floor %d", dirn, floor)
}

// Offers a hall stop. Returns false when the floor cannot be served in the
// current sweep, the caller must look elsewhere.
func (c *Car) EnqueueStop(floor int, dirn elevconsts.Dirn) bool {
	if !c.InService() || !c.validFloor(floor) {
		return false
	}

	switch c.status {
	case elevconsts.Idle:
		c.adopt(floor)
		return true

	case elevconsts.Moving:
		if dirn != c.dirn || !c.isAhead(floor) {
			return false
		}
		c.stops(c.dirn).Add(floor)
		return true
	}
	return false
}

// Adds a stop requested from inside the car. Never rejected while in service,
// floors behind the sweep wait for the reversal.
func (c *Car) EnqueueCarStop(floor int) bool {
	if !c.InService() || !c.validFloor(floor) {
		return false
	}

	switch c.status {
	case elevconsts.Idle:
		c.adopt(floor)

	case elevconsts.Moving:
		if c.isAhead(floor) {
			c.stops(c.dirn).Add(floor)
		} else {
			c.stops(c.dirn.Opposite()).Add(floor)
		}

	case elevconsts.DoorsOpen:
		if floor == c.floor {
			c.doorRequest = true
			return true
		}
		if c.dirn == elevconsts.Stop {
			c.dirn = c.directionTo(floor)
		}
		if c.isAhead(floor) {
			c.stops(c.dirn).Add(floor)
		} else {
			c.stops(c.dirn.Opposite()).Add(floor)
		}
	}
	return true
}

func (c *Car) openDoors() []elevevent.ElevatorEvent {
	c.status = elevconsts.DoorsOpen
	c.dwellRemaining = c.doorDwellSteps
	c.doorRequest = false
	Log.Debug().Int("car", c.ID).Msgf("Doors opened at floor %d", c.floor)
	return []elevevent.ElevatorEvent{elevevent.Wrap(elevevent.DoorsOpenedEvent{CarID: c.ID, Floor: c.floor})}
}

// Picks what to do after the doors close: keep the sweep, reverse, or idle
func (c *Car) chooseNext() []elevevent.ElevatorEvent {
	if c.dirn == elevconsts.Stop {
		switch {
		case !c.upStops.IsEmpty():
			c.dirn = elevconsts.Up
		case !c.downStops.IsEmpty():
			c.dirn = elevconsts.Down
		}
	}

	if c.dirn != elevconsts.Stop {
		if !c.stops(c.dirn).IsEmpty() {
			c.status = elevconsts.Moving
			return nil
		}
		if !c.stops(c.dirn.Opposite()).IsEmpty() {
			c.dirn = c.dirn.Opposite()
			c.status = elevconsts.Moving
			Log.Debug().Int("car", c.ID).Msgf("Reversing to %v at floor %d", c.dirn, c.floor)
			return []elevevent.ElevatorEvent{elevevent.Wrap(elevevent.DirectionChangedEvent{CarID: c.ID, Dirn: c.dirn})}
		}
	}

	c.dirn = elevconsts.Stop
	c.status = elevconsts.Idle
	Log.Debug().Int("car", c.ID).Msgf("Idle at floor %d", c.floor)
	return []elevevent.ElevatorEvent{elevevent.Wrap(elevevent.CarIdleEvent{CarID: c.ID, Floor: c.floor})}
}

// Advances the car by one unit of time: one floor of travel or one tick of
// door dwell. Returns the events the step produced.
func (c *Car) Step() []elevevent.ElevatorEvent {
	if c.status == elevconsts.OutOfService {
		return nil
	}
	if c.doorRequest {
		return c.openDoors()
	}

	switch c.status {
	case elevconsts.DoorsOpen:
		c.dwellRemaining--
		if c.dwellRemaining > 0 {
			return nil
		}
		events := []elevevent.ElevatorEvent{elevevent.Wrap(elevevent.DoorsClosedEvent{CarID: c.ID, Floor: c.floor})}
		if c.leavingService {
			c.leavingService = false
			c.status = elevconsts.OutOfService
			c.dirn = elevconsts.Stop
			Log.Warn().Int("car", c.ID).Msgf("Doors closed, car left service at floor %d", c.floor)
			return events
		}
		return append(events, c.chooseNext()...)

	case elevconsts.Moving:
		if c.stops(c.dirn).IsEmpty() {
			return c.chooseNext()
		}
		c.floor += int(c.dirn)
		events := []elevevent.ElevatorEvent{elevevent.ArrivedAtFloorEvent{CarID: c.ID, Floor: c.floor}.Wrap()}
		if c.stops(c.dirn).Remove(c.floor) {
			events = append(events, c.openDoors()...)
		}
		return events
	}
	return nil
}

// Takes the car out of service. Pending stops are removed and returned for
// reassignment. Doors that are already open finish their dwell first.
func (c *Car) SetOutOfService() []ReleasedStop {
	if !c.InService() {
		return nil
	}

	var released []ReleasedStop
	for _, floor := range c.upStops.Clear() {
		released = append(released, ReleasedStop{Floor: floor, Dirn: elevconsts.Up})
	}
	for _, floor := range c.downStops.Clear() {
		released = append(released, ReleasedStop{Floor: floor, Dirn: elevconsts.Down})
	}

	if c.status == elevconsts.DoorsOpen {
		c.leavingService = true
	} else {
		if c.doorRequest {
			released = append(released, ReleasedStop{Floor: c.floor, Dirn: elevconsts.Stop})
			c.doorRequest = false
		}
		c.status = elevconsts.OutOfService
		c.dirn = elevconsts.Stop
	}

	Log.Warn().Int("car", c.ID).Msgf("Out of service at floor %d, released %d stops", c.floor, len(released))
	return released
}

// Returns the car to service as idle at its current floor. False if the car
// was in service already.
func (c *Car) Restore() bool {
	if c.leavingService {
		c.leavingService = false
		return true
	}
	if c.status != elevconsts.OutOfService {
		return false
	}
	c.status = elevconsts.Idle
	c.dirn = elevconsts.Stop
	c.dwellRemaining = 0
	Log.Info().Int("car", c.ID).Msgf("Restored at floor %d", c.floor)
	return true
}
