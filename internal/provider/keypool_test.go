package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlots(n int) []*Slot {
	slots := make([]*Slot, n)
	for i := range slots {
		name := string(rune('a' + i))
		slots[i] = &Slot{
			Label:   name,
			Breaker: circuitbreaker.New(circuitbreaker.Config{Name: name, MaxFailures: 1, Timeout: time.Hour}),
		}
	}
	return slots
}

func TestNewStrategy(t *testing.T) {
	for name, want := range map[string]string{
		"":            "round_robin",
		"round-robin": "round_robin",
		"random":      "random",
		"least_busy":  "least_busy",
	} {
		s, err := NewStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, want, s.Name())
	}

	_, err := NewStrategy("weighted")
	assert.Error(t, err)
}

func TestRoundRobin_Cycles(t *testing.T) {
	slots := newSlots(3)
	rr := &RoundRobin{}

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, rr.Next(slots).Label)
	}

	assert.Equal(t, []string{"a", "b", "c", "a"}, got)
	assert.Nil(t, rr.Next(nil))
}

func TestLeastBusy_PrefersIdleSlot(t *testing.T) {
	slots := newSlots(3)
	slots[0].inFlight.Store(2)
	slots[1].inFlight.Store(1)
	slots[2].inFlight.Store(1)

	assert.Equal(t, "b", (&LeastBusy{}).Next(slots).Label)
}

func TestKeyPool_SkipsOpenBreakers(t *testing.T) {
	slots := newSlots(2)
	pool := NewKeyPool(slots, &RoundRobin{})
	ctx := context.Background()

	err := pool.Do(ctx, func(ctx context.Context, slot *Slot) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, circuitbreaker.StateOpen, slots[0].Breaker.State())

	var used []string
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Do(ctx, func(ctx context.Context, slot *Slot) error {
			used = append(used, slot.Label)
			return nil
		}))
	}

	assert.Equal(t, []string{"b", "b", "b"}, used)
}

func TestKeyPool_AllOpen(t *testing.T) {
	slots := newSlots(1)
	pool := NewKeyPool(slots, &RoundRobin{})
	ctx := context.Background()

	_ = pool.Do(ctx, func(ctx context.Context, slot *Slot) error { return errors.New("boom") })

	err := pool.Do(ctx, func(ctx context.Context, slot *Slot) error { return nil })
	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestKeyPool_TracksInFlight(t *testing.T) {
	slots := newSlots(1)
	pool := NewKeyPool(slots, &LeastBusy{})

	err := pool.Do(context.Background(), func(ctx context.Context, slot *Slot) error {
		assert.Equal(t, int64(1), slot.InFlight())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), slots[0].InFlight())
}
