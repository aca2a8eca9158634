// Package view holds the admin's state for one administered room: a single
// snapshot of the reconciled device list, replaced wholesale after every
// fetch, plus the press-notification modal. Mutating commands go through here
// so the refetch-after-command convention is enforced in one place.
package view

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/darkermage/quiz-buzzer-admin/internal/events"
	"github.com/darkermage/quiz-buzzer-admin/internal/reconcile"
	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

// Registry is the slice of the device registry client the view needs.
type Registry interface {
	List(ctx context.Context) ([]registry.Device, error)
	Register(ctx context.Context, macAddress, buttonID, name string) (*registry.Device, error)
	Assign(ctx context.Context, macAddress, roomCode, teamID string) (*registry.Device, error)
	Unassign(ctx context.Context, macAddress string) error
	Delete(ctx context.Context, macAddress string) error
}

// TeamSource supplies the administered room's current team set.
type TeamSource interface {
	Teams(ctx context.Context) (map[string]registry.Team, error)
}

// PressModal is the currently displayed press notification. It stays up until
// the operator dismisses it; there is no auto-dismiss timer.
type PressModal struct {
	TeamID    string
	TeamName  string
	TeamColor string
}

// View is the admin view state for one room.
type View struct {
	reg      Registry
	teams    TeamSource
	bus      *events.Bus
	logger   *zap.Logger
	roomCode string

	mu         sync.Mutex
	entries    []reconcile.Entry
	generation uint64
	modal      *PressModal

	subToken string
	presses  <-chan events.PressEvent
	done     chan struct{}
}

// New creates a view for roomCode and subscribes it to the press bus for its
// lifetime. Callers must Close the view to release the subscription.
func New(reg Registry, teams TeamSource, bus *events.Bus, roomCode string, logger *zap.Logger) *View {
	v := &View{
		reg:      reg,
		teams:    teams,
		bus:      bus,
		logger:   logger,
		roomCode: roomCode,
		done:     make(chan struct{}),
	}
	v.subToken, v.presses = bus.Subscribe()
	go v.consumePresses()
	return v
}

// consumePresses keeps the modal pointed at the latest press notification.
func (v *View) consumePresses() {
	for {
		select {
		case ev, ok := <-v.presses:
			if !ok {
				return
			}
			v.mu.Lock()
			v.modal = &PressModal{TeamID: ev.TeamID, TeamName: ev.TeamName, TeamColor: ev.TeamColor}
			v.mu.Unlock()
			v.logger.Info("hardware button pressed",
				zap.String("team", ev.TeamName),
				zap.String("teamId", ev.TeamID))
		case <-v.done:
			return
		}
	}
}

// Refresh refetches the device inventory and the room's teams, reconciles
// them, and replaces the snapshot. Devices and teams are fetched
// concurrently. If another Refresh started after this one, its result wins
// and this one is not applied to the snapshot; the reconciled list is still
// returned to the caller.
func (v *View) Refresh(ctx context.Context) ([]reconcile.Entry, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mu.Unlock()

	var (
		devices []registry.Device
		teams   map[string]registry.Team
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		devices, err = v.reg.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = v.teams.Teams(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := reconcile.Reconcile(devices, v.roomCode, teams)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen == v.generation {
		v.entries = entries
	} else {
		v.logger.Debug("discarding stale reconciliation",
			zap.Uint64("generation", gen),
			zap.Uint64("current", v.generation))
	}
	return entries, nil
}

// Entries returns the current snapshot.
func (v *View) Entries() []reconcile.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]reconcile.Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Register registers a device and, on success, refreshes the snapshot.
func (v *View) Register(ctx context.Context, macAddress, buttonID, name string) (*registry.Device, error) {
	device, err := v.reg.Register(ctx, macAddress, buttonID, name)
	if err != nil {
		return nil, err
	}
	if _, err := v.Refresh(ctx); err != nil {
		return device, err
	}
	return device, nil
}

// Assign binds a device to a team in this room and refreshes the snapshot.
func (v *View) Assign(ctx context.Context, macAddress, teamID string) (*registry.Device, error) {
	device, err := v.reg.Assign(ctx, macAddress, v.roomCode, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := v.Refresh(ctx); err != nil {
		return device, err
	}
	return device, nil
}

// Unassign removes a device's binding and refreshes the snapshot.
func (v *View) Unassign(ctx context.Context, macAddress string) error {
	if err := v.reg.Unassign(ctx, macAddress); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}

// Delete removes a device from the registry and refreshes the snapshot.
func (v *View) Delete(ctx context.Context, macAddress string) error {
	if err := v.reg.Delete(ctx, macAddress); err != nil {
		return err
	}
	_, err := v.Refresh(ctx)
	return err
}

// Modal returns the current press notification, if one is showing.
func (v *View) Modal() (PressModal, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.modal == nil {
		return PressModal{}, false
	}
	return *v.modal, true
}

// Dismiss clears the press notification. Only an explicit dismissal clears
// it.
func (v *View) Dismiss() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modal = nil
}

// Close unsubscribes from the press bus and stops the view.
func (v *View) Close() {
	close(v.done)
	v.bus.Unsubscribe(v.subToken)
}
