package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()

	h.Publish(CalibrationWritten, CalibrationEvent{Transform: [6]int32{1, 2, 3, 4, 5, 6}, Source: "flash", Ts: 42})

	ev := <-ch
	assert.Equal(t, CalibrationWritten, ev.Name)

	payload, err := DecodeAs[CalibrationEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, [6]int32{1, 2, 3, 4, 5, 6}, payload.Transform)
	assert.Equal(t, int64(42), payload.Ts)

	h.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok, "unsubscribe closes the channel")
	h.Unsubscribe(ch)
}

func TestPublishDropsForSlowSubscribers(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()

	for i := 0; i < 32; i++ {
		h.Publish(CalibrationErased, CalibrationEvent{})
	}
	assert.Len(t, ch, 16)
}

func TestNilHub(t *testing.T) {
	var h *EventHub
	assert.NotPanics(t, func() { h.Publish(CalibrationLost, nil) })
}

func TestDecodeEmpty(t *testing.T) {
	v, err := DecodeAs[CalibrationEvent](Event{Name: CalibrationLost})
	require.NoError(t, err)
	assert.Equal(t, CalibrationEvent{}, v)
}
