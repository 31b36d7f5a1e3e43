package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDeliversInSubscriptionOrder(t *testing.T) {
	r := NewRegistry[int]()

	var got []string
	r.On(Played, func(v int) { got = append(got, "first") })
	r.On(Played, func(v int) { got = append(got, "second") })
	r.On(Ended, func(v int) { got = append(got, "ended") })

	r.Emit(Played, 1)
	assert.Equal(t, []string{"first", "second"}, got)

	r.Emit(Ended, 2)
	assert.Equal(t, []string{"first", "second", "ended"}, got)
}

func TestRegistryOff(t *testing.T) {
	r := NewRegistry[string]()

	calls := 0
	off := r.On(Played, func(string) { calls++ })
	r.Emit(Played, "x")
	off()
	off()
	r.Emit(Played, "y")

	assert.Equal(t, 1, calls)
	assert.Zero(t, r.Len(Played))
}

func TestRegistryNoReplay(t *testing.T) {
	r := NewRegistry[int]()
	r.Emit(Played, 1)

	var got []int
	r.On(Played, func(v int) { got = append(got, v) })
	r.Emit(Played, 2)

	assert.Equal(t, []int{2}, got)
}

func TestRegistrySubscribeDuringEmit(t *testing.T) {
	r := NewRegistry[int]()

	var late []int
	r.On(Played, func(int) {
		r.On(Played, func(v int) { late = append(late, v) })
	})

	r.Emit(Played, 1)
	assert.Empty(t, late, "listener added during delivery must not see the in-flight event")

	r.Emit(Played, 2)
	assert.Equal(t, []int{2}, late)
}

func TestRegistryUnsubscribeDuringEmit(t *testing.T) {
	r := NewRegistry[int]()

	var offSecond func()
	secondCalls := 0
	r.On(Played, func(int) { offSecond() })
	offSecond = r.On(Played, func(int) { secondCalls++ })

	r.Emit(Played, 1)
	r.Emit(Played, 2)
	assert.Equal(t, 1, secondCalls)
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(Played, "g1", PlayedPayload{PlayerIndex: 1, Row: 2, Col: 3, Notation: "d3", Ply: 2})
	require.NoError(t, err)
	assert.Equal(t, Played, env.Type)
	assert.Equal(t, "g1", env.GameID)

	var p PlayedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "d3", p.Notation)

	assert.Equal(t, "channel:game:g1", GameChannel("g1"))
}
