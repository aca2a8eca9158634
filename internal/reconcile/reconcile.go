// Package reconcile classifies each hardware device's team-binding state
// relative to the room currently being administered. It is a pure
// computation: the device registry and the room's team set go in, an
// annotated display list comes out.
package reconcile

import "github.com/darkermage/quiz-buzzer-admin/internal/registry"

// Binding is a device's classification relative to the current room.
type Binding string

const (
	// BoundHere: assigned to the current room and the team resolves.
	BoundHere Binding = "bound_here"

	// BoundHereStale: assigned to the current room but the team no longer
	// exists in the room's team set.
	BoundHereStale Binding = "bound_here_stale"

	// BoundElsewhere: assigned to a different room.
	BoundElsewhere Binding = "bound_elsewhere"

	// Unbound: not assigned to any room.
	Unbound Binding = "unbound"
)

// UnknownTeamName is displayed for a stale binding when the device carries no
// denormalized team name to fall back on.
const UnknownTeamName = "Unknown team"

// Entry is a device annotated with its binding classification. TeamName and
// TeamColor are resolved display values: for BoundHere they come from the
// room's team set, for BoundHereStale from the device's denormalized snapshot
// or the UnknownTeamName placeholder.
type Entry struct {
	Device    registry.Device
	Binding   Binding
	TeamName  string
	TeamColor string
}

// Reconcile produces the display list for a room: every device from the
// inventory, in input order, classified against the room's team set. No
// device is dropped or duplicated; inputs are not mutated.
func Reconcile(devices []registry.Device, roomCode string, teams map[string]registry.Team) []Entry {
	entries := make([]Entry, len(devices))
	for i, d := range devices {
		entries[i] = classify(d, roomCode, teams)
	}
	return entries
}

// classify maps one device onto exactly one binding state.
func classify(d registry.Device, roomCode string, teams map[string]registry.Team) Entry {
	e := Entry{Device: d}

	if d.RoomCode == "" {
		e.Binding = Unbound
		return e
	}

	if d.RoomCode != roomCode {
		e.Binding = BoundElsewhere
		return e
	}

	// Assigned to the current room. A device with a room but no team violates
	// the registry invariant; treat it as unbound rather than inventing a
	// binding.
	if d.TeamID == "" {
		e.Binding = Unbound
		return e
	}

	if team, ok := teams[d.TeamID]; ok {
		e.Binding = BoundHere
		e.TeamName = team.Name
		e.TeamColor = team.Color
		return e
	}

	e.Binding = BoundHereStale
	if d.TeamName != "" {
		e.TeamName = d.TeamName
	} else {
		e.TeamName = UnknownTeamName
	}
	return e
}
