package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()

	ev := PressEvent{TeamID: "t1", TeamName: "Red", TeamColor: "#ff0000"}
	bus.Publish(ev)

	assert.Equal(t, ev, <-ch1)
	assert.Equal(t, ev, <-ch2)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	token, ch := bus.Subscribe()
	bus.Unsubscribe(token)

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic on the closed channel.
	bus.Publish(PressEvent{TeamID: "t1"})
}

func TestBusUnsubscribeUnknownTokenIsNoop(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bus.Unsubscribe("never-issued")
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, ch := bus.Subscribe()

	// Overfill the subscriber buffer; the excess is dropped, not queued.
	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Publish(PressEvent{TeamID: "t1"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestBusCloseTearsDownSubscribers(t *testing.T) {
	bus := NewBus()

	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()
	bus.Close()

	_, open := <-ch1
	require.False(t, open)
	_, open = <-ch2
	require.False(t, open)
}

func TestBusSubscribeTokensAreUnique(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	t1, _ := bus.Subscribe()
	t2, _ := bus.Subscribe()
	assert.NotEqual(t, t1, t2)
}
