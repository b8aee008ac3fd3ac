package elevcar

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dinaMadelen/elevdispatch/internal/elevconsts"
	"github.com/tiendc/go-deepcopy"
)

// Point-in-time view of a car, detached from the car's own queues
type CarSnapshot struct {
	ID           int                  `json:"id"`
	CurrentFloor int                  `json:"current_floor"`
	Dirn         elevconsts.Dirn      `json:"dirn"`
	Status       elevconsts.CarStatus `json:"status"`
	InService    bool                 `json:"in_service"`
	UpStops      []int                `json:"up_stops"`
	DownStops    []int                `json:"down_stops"`
	PendingStops []int                `json:"pending_stops"` //visiting order
}

// Pending floors in the order the car will visit them
func (c *Car) pendingStops() []int {
	first := c.dirn
	if first == elevconsts.Stop {
		first = elevconsts.Up
	}
	pending := c.stops(first).InSweepOrder(first)
	pending = append(pending, c.stops(first.Opposite()).InSweepOrder(first.Opposite())...)
	if c.doorRequest {
		pending = append([]int{c.floor}, pending...)
	}
	return pending
}

func (c *Car) Snapshot() CarSnapshot {
	view := CarSnapshot{
		ID:           c.ID,
		CurrentFloor: c.floor,
		Dirn:         c.dirn,
		Status:       c.status,
		InService:    c.InService(),
		UpStops:      c.upStops.floors,
		DownStops:    c.downStops.floors,
		PendingStops: c.pendingStops(),
	}

	var snapshot CarSnapshot
	if err := deepcopy.Copy(&snapshot, &view); err != nil {
		Log.Error().Err(err).Int("car", c.ID).Msg("Error copying car snapshot")
		view.UpStops = slices.Clone(view.UpStops)
		view.DownStops = slices.Clone(view.DownStops)
		return view
	}
	return snapshot
}

func (cs CarSnapshot) String() string {
	return fmt.Sprintf("car %d floor=%d dirn=%s status=%s pending=%v", cs.ID, cs.CurrentFloor, cs.Dirn, cs.Status, cs.PendingStops)
}

// Renders the bank as a shaft diagram, one column per car, top floor first
func FormatStatus(snapshots []CarSnapshot, numFloors int) string {
	var sb strings.Builder

	border := "  +-----+" + strings.Repeat("-------+", len(snapshots)) + "\n"
	sb.WriteString(border)
	sb.WriteString("  |floor|")
	for _, snapshot := range snapshots {
		fmt.Fprintf(&sb, " car %-2d|", snapshot.ID)
	}
	sb.WriteString("\n")
	sb.WriteString(border)

	for floor := numFloors - 1; floor >= 0; floor-- {
		fmt.Fprintf(&sb, "  | %-3d |", floor)
		for _, snapshot := range snapshots {
			sb.WriteString(" " + shaftCell(snapshot, floor) + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(border)

	for _, snapshot := range snapshots {
		sb.WriteString("  " + snapshot.String() + "\n")
	}
	return sb.String()
}

func shaftCell(snapshot CarSnapshot, floor int) string {
	if snapshot.CurrentFloor == floor {
		switch snapshot.Status {
		case elevconsts.OutOfService:
			return "[ X ]"
		case elevconsts.DoorsOpen:
			return "[< >]"
		}
		switch snapshot.Dirn {
		case elevconsts.Up:
			return "[ ^ ]"
		case elevconsts.Down:
			return "[ v ]"
		}
		return "[   ]"
	}
	if slices.Contains(snapshot.PendingStops, floor) {
		return "  *  "
	}
	return "  .  "
}
