package events_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/extensionhost/authbroker/events"
)

func TestEmitterDeliversToAllSubscribers(t *testing.T) {
	emitter := events.NewEmitter[string]()

	var first, second []string
	emitter.Subscribe(func(v string) { first = append(first, v) })
	emitter.Subscribe(func(v string) { second = append(second, v) })

	emitter.Emit("a")
	emitter.Emit("b")

	require.Equal(t, []string{"a", "b"}, first)
	require.Equal(t, []string{"a", "b"}, second)
}

func TestDisposeStopsDelivery(t *testing.T) {
	emitter := events.NewEmitter[int]()

	var got []int
	sub := emitter.Subscribe(func(v int) { got = append(got, v) })

	emitter.Emit(1)
	sub.Dispose()
	emitter.Emit(2)

	require.Equal(t, []int{1}, got)
	require.Equal(t, 0, emitter.Len())
}

func TestDisposeIsIdempotent(t *testing.T) {
	emitter := events.NewEmitter[int]()
	sub := emitter.Subscribe(func(int) {})
	other := emitter.Subscribe(func(int) {})

	sub.Dispose()
	sub.Dispose()

	require.Equal(t, 1, emitter.Len())
	other.Dispose()
	require.Equal(t, 0, emitter.Len())
}

func TestDisposeFuncRunsAtMostOnce(t *testing.T) {
	count := 0
	d := events.NewDisposeFunc(func() { count++ })

	d.Dispose()
	d.Dispose()

	require.Equal(t, 1, count)
}

func TestHandlerMaySubscribeDuringEmit(t *testing.T) {
	emitter := events.NewEmitter[int]()

	added := 0
	emitter.Subscribe(func(int) {
		emitter.Subscribe(func(int) { added++ })
	})

	emitter.Emit(1)
	require.Equal(t, 0, added)

	emitter.Emit(2)
	require.Equal(t, 1, added)
}
