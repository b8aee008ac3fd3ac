package elevcar

import (
	"slices"

	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
)

// Ordered set of floors, kept ascending.
type StopSet struct {
	floors []int
}

// Adds floor, returns whether it was already present
func (ss *StopSet) Add(floor int) bool {
	index, found := slices.BinarySearch(ss.floors, floor)
	if found {
		return true
	}
	ss.floors = slices.Insert(ss.floors, index, floor)
	return false
}

// Removes floor, returns whether it was present
func (ss *StopSet) Remove(floor int) bool {
	index, found := slices.BinarySearch(ss.floors, floor)
	if !found {
		return false
	}
	ss.floors = slices.Delete(ss.floors, index, index+1)
	return true
}

func (ss *StopSet) Contains(floor int) bool {
	_, found := slices.BinarySearch(ss.floors, floor)
	return found
}

func (ss *StopSet) Len() int {
	return len(ss.floors)
}

func (ss *StopSet) IsEmpty() bool {
	return len(ss.floors) == 0
}

// Floors in the order a sweep in dirn would visit them
func (ss *StopSet) InSweepOrder(dirn elevconsts.Dirn) []int {
	floors := slices.Clone(ss.floors)
	if dirn == elevconsts.Down {
		slices.Reverse(floors)
	}
	return floors
}

// Empties the set and returns what it held, ascending
func (ss *StopSet) Clear() []int {
	floors := ss.floors
	ss.floors = nil
	return floors
}
