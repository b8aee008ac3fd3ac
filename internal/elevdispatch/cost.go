package elevdispatch

import (
	"github.com/dinaMadelen/elevdispatch/internal/elevcall"
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

// Scores one car for one hall call. eligible=false keeps the car out of this
// round. Lower cost wins.
type CostFunction interface {
	Cost(snapshot elevcar.CarSnapshot, call elevcall.Call) (cost float64, eligible bool)
}

// Distance along the current sweep. Idle cars take anything, moving cars
// only calls strictly ahead in their own direction.
type ScanCost struct{}

func (ScanCost) Cost(snapshot elevcar.CarSnapshot, call elevcall.Call) (float64, bool) {
	if !snapshot.InService {
		return 0, false
	}

	distance := call.Floor - snapshot.CurrentFloor
	switch snapshot.Status {
	case elevconsts.Idle:
		return float64(abs(distance)), true

	case elevconsts.Moving:
		if call.Dirn != snapshot.Dirn {
			return 0, false
		}
		if distance*int(snapshot.Dirn) <= 0 {
			return 0, false
		}
		return float64(abs(distance)), true
	}
	return 0, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
