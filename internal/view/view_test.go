package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/darkermage/quiz-buzzer-admin/internal/events"
	"github.com/darkermage/quiz-buzzer-admin/internal/reconcile"
	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

// fakeRegistry serves canned devices and records mutating calls. listGate,
// when set, blocks List until released so tests can interleave refreshes.
type fakeRegistry struct {
	mu       sync.Mutex
	devices  []registry.Device
	listErr  error
	listGate chan struct{}

	registered []string
	assigned   []string
	unassigned []string
	deleted    []string

	registerErr error
	assignErr   error
}

func (f *fakeRegistry) List(ctx context.Context) ([]registry.Device, error) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]registry.Device, len(f.devices))
	copy(out, f.devices)
	return out, nil
}

func (f *fakeRegistry) Register(ctx context.Context, macAddress, buttonID, name string) (*registry.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, macAddress)
	d := registry.Device{MACAddress: macAddress, ButtonID: buttonID, Name: name}
	f.devices = append(f.devices, d)
	return &d, nil
}

func (f *fakeRegistry) Assign(ctx context.Context, macAddress, roomCode, teamID string) (*registry.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	f.assigned = append(f.assigned, macAddress)
	for i := range f.devices {
		if f.devices[i].MACAddress == macAddress {
			f.devices[i].RoomCode = roomCode
			f.devices[i].TeamID = teamID
			d := f.devices[i]
			return &d, nil
		}
	}
	return &registry.Device{MACAddress: macAddress, RoomCode: roomCode, TeamID: teamID}, nil
}

func (f *fakeRegistry) Unassign(ctx context.Context, macAddress string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unassigned = append(f.unassigned, macAddress)
	for i := range f.devices {
		if f.devices[i].MACAddress == macAddress {
			f.devices[i].RoomCode = ""
			f.devices[i].TeamID = ""
		}
	}
	return nil
}

func (f *fakeRegistry) Delete(ctx context.Context, macAddress string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, macAddress)
	kept := f.devices[:0]
	for _, d := range f.devices {
		if d.MACAddress != macAddress {
			kept = append(kept, d)
		}
	}
	f.devices = kept
	return nil
}

type fakeTeams struct {
	teams map[string]registry.Team
	err   error
}

func (f *fakeTeams) Teams(ctx context.Context) (map[string]registry.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teams, nil
}

func newTestView(t *testing.T, reg *fakeRegistry, teams *fakeTeams) (*View, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	v := New(reg, teams, bus, "R1", zap.NewNop())
	t.Cleanup(v.Close)
	return v, bus
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	reg := &fakeRegistry{devices: []registry.Device{
		{MACAddress: "AA:BB:CC:DD:EE:01", RoomCode: "R1", TeamID: "t1"},
		{MACAddress: "AA:BB:CC:DD:EE:02"},
	}}
	teams := &fakeTeams{teams: map[string]registry.Team{
		"t1": {ID: "t1", Name: "Red", Color: "#ff0000"},
	}}
	v, _ := newTestView(t, reg, teams)

	entries, err := v.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, reconcile.BoundHere, entries[0].Binding)
	assert.Equal(t, "Red", entries[0].TeamName)
	assert.Equal(t, reconcile.Unbound, entries[1].Binding)
	assert.Equal(t, entries, v.Entries())

	// A second refresh replaces the snapshot wholesale, no merging.
	reg.mu.Lock()
	reg.devices = []registry.Device{{MACAddress: "AA:BB:CC:DD:EE:03"}}
	reg.mu.Unlock()

	entries, err = v.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:03", entries[0].Device.MACAddress)
	assert.Equal(t, entries, v.Entries())
}

func TestRefreshErrorLeavesSnapshotIntact(t *testing.T) {
	reg := &fakeRegistry{devices: []registry.Device{{MACAddress: "AA:BB:CC:DD:EE:01"}}}
	teams := &fakeTeams{teams: map[string]registry.Team{}}
	v, _ := newTestView(t, reg, teams)

	_, err := v.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, v.Entries(), 1)

	reg.mu.Lock()
	reg.listErr = errors.New("registry down")
	reg.mu.Unlock()

	_, err = v.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, v.Entries(), 1, "failed refresh must not clear the snapshot")
}

func TestStaleRefreshDoesNotOverwriteNewerSnapshot(t *testing.T) {
	reg := &fakeRegistry{devices: []registry.Device{{MACAddress: "AA:BB:CC:DD:EE:01"}}}
	teams := &fakeTeams{teams: map[string]registry.Team{}}
	v, _ := newTestView(t, reg, teams)

	// First refresh blocks inside List until released.
	gate := make(chan struct{})
	reg.mu.Lock()
	reg.listGate = gate
	reg.mu.Unlock()

	firstDone := make(chan []reconcile.Entry, 1)
	go func() {
		entries, err := v.Refresh(context.Background())
		assert.NoError(t, err)
		firstDone <- entries
	}()

	// Give the first refresh time to claim its generation.
	require.Eventually(t, func() bool {
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.generation == 1
	}, time.Second, 5*time.Millisecond)

	// A newer refresh completes with a different inventory.
	reg.mu.Lock()
	reg.listGate = nil
	reg.devices = []registry.Device{{MACAddress: "AA:BB:CC:DD:EE:99"}}
	reg.mu.Unlock()

	_, err := v.Refresh(context.Background())
	require.NoError(t, err)

	// Release the stale fetch; its result must not land in the snapshot.
	reg.mu.Lock()
	reg.devices = []registry.Device{{MACAddress: "AA:BB:CC:DD:EE:01"}}
	reg.mu.Unlock()
	close(gate)
	stale := <-firstDone

	require.Len(t, stale, 1)
	entries := v.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:99", entries[0].Device.MACAddress)
}

func TestCommandsRefetchOnSuccessOnly(t *testing.T) {
	reg := &fakeRegistry{}
	teams := &fakeTeams{teams: map[string]registry.Team{}}
	v, _ := newTestView(t, reg, teams)

	_, err := v.Register(context.Background(), "AA:BB:CC:DD:EE:01", "1", "")
	require.NoError(t, err)
	assert.Len(t, v.Entries(), 1, "successful register refreshes the snapshot")

	reg.mu.Lock()
	reg.assignErr = &registry.RemoteError{Status: 404, Body: "unknown device"}
	reg.mu.Unlock()

	before := v.Entries()
	_, err = v.Assign(context.Background(), "AA:BB:CC:DD:EE:02", "t1")
	require.Error(t, err)
	assert.Equal(t, before, v.Entries(), "failed command must not trigger a refetch")

	require.NoError(t, v.Unassign(context.Background(), "AA:BB:CC:DD:EE:01"))
	require.NoError(t, v.Delete(context.Background(), "AA:BB:CC:DD:EE:01"))
	assert.Empty(t, v.Entries())
}

func TestPressModalLatestWinsAndExplicitDismiss(t *testing.T) {
	reg := &fakeRegistry{}
	teams := &fakeTeams{teams: map[string]registry.Team{}}
	v, bus := newTestView(t, reg, teams)

	_, ok := v.Modal()
	assert.False(t, ok)

	bus.Publish(events.PressEvent{TeamID: "t1", TeamName: "Red"})
	require.Eventually(t, func() bool {
		m, ok := v.Modal()
		return ok && m.TeamID == "t1"
	}, time.Second, 5*time.Millisecond)

	// A later press replaces the modal; it never auto-dismisses.
	bus.Publish(events.PressEvent{TeamID: "t2", TeamName: "Blue"})
	require.Eventually(t, func() bool {
		m, ok := v.Modal()
		return ok && m.TeamID == "t2"
	}, time.Second, 5*time.Millisecond)

	v.Dismiss()
	_, ok = v.Modal()
	assert.False(t, ok)
}

func TestCloseStopsPressConsumption(t *testing.T) {
	reg := &fakeRegistry{}
	teams := &fakeTeams{teams: map[string]registry.Team{}}
	bus := events.NewBus()
	defer bus.Close()

	v := New(reg, teams, bus, "R1", zap.NewNop())
	v.Close()

	// After Close the subscription is gone; the modal stays clear.
	bus.Publish(events.PressEvent{TeamID: "t1"})
	time.Sleep(50 * time.Millisecond)
	_, ok := v.Modal()
	assert.False(t, ok)
}
