package elevcall

import (
	"fmt"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

const NO_CAR = -1

type ID uint64

// A single floor request. Values are never mutated after creation,
// derived calls are returned as copies.
type Call struct {
	ID          ID                  `json:"id"`
	Floor       int                 `json:"floor"`
	Dirn        elevconsts.Dirn     `json:"dirn"`
	Kind        elevconsts.CallKind `json:"kind"`
	OriginCar   int                 `json:"origin_car"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// Hall calls with the same key are the same request
type HallKey struct {
	Floor int
	Dirn  elevconsts.Dirn
}

func NewHallCall(id ID, floor int, dirn elevconsts.Dirn, submittedAt time.Time) Call {
	return Call{
		ID:          id,
		Floor:       floor,
		Dirn:        dirn,
		Kind:        elevconsts.Hall,
		OriginCar:   NO_CAR,
		SubmittedAt: submittedAt,
	}
}

func NewCarCall(id ID, carID int, floor int, submittedAt time.Time) Call {
	return Call{
		ID:          id,
		Floor:       floor,
		Dirn:        elevconsts.Stop,
		Kind:        elevconsts.Car,
		OriginCar:   carID,
		SubmittedAt: submittedAt,
	}
}

func (c Call) Key() HallKey {
	return HallKey{Floor: c.Floor, Dirn: c.Dirn}
}

func (c Call) IsHall() bool {
	return c.Kind == elevconsts.Hall
}

// Copy of the call re-expressed as a hall call travelling in dirn.
// Id and submission time are kept so the call keeps its age.
func (c Call) AsHallCall(dirn elevconsts.Dirn) Call {
	return NewHallCall(c.ID, c.Floor, dirn, c.SubmittedAt)
}

func (c Call) Waited(now time.Time) time.Duration {
	if now.Before(c.SubmittedAt) {
		return 0
	}
	return now.Sub(c.SubmittedAt)
}

func (c Call) String() string {
	if c.IsHall() {
		return fmt.Sprintf("call#%d{hall floor=%d dirn=%s}", c.ID, c.Floor, c.Dirn)
	}
	return fmt.Sprintf("call#%d{car=%d floor=%d}", c.ID, c.OriginCar, c.Floor)
}
