package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/circuitbreaker"
)

// Slot is one API credential with its own breaker and in-flight counter.
type Slot struct {
	Label    string
	Breaker  *circuitbreaker.CircuitBreaker
	client   chatClient
	inFlight atomic.Int64
}

func (s *Slot) InFlight() int64 {
	return s.inFlight.Load()
}

// Strategy picks the next slot among those whose breaker lets calls through.
type Strategy interface {
	Next(slots []*Slot) *Slot
	Name() string
}

// Creates a key selection strategy based on name
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "round-robin", "round_robin", "":
		return &RoundRobin{}, nil
	case "random":
		return NewRandom(), nil
	case "least-busy", "least_busy":
		return &LeastBusy{}, nil
	default:
		return nil, fmt.Errorf("unknown key strategy: %s", name)
	}
}

type RoundRobin struct {
	mu      sync.Mutex
	current int
}

func (r *RoundRobin) Next(slots []*Slot) *Slot {
	if len(slots) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	slot := slots[r.current%len(slots)]
	r.current++

	return slot
}

func (r *RoundRobin) Name() string {
	return "round_robin"
}

type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom() *Random {
	return &Random{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *Random) Next(slots []*Slot) *Slot {
	if len(slots) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return slots[r.rng.Intn(len(slots))]
}

func (r *Random) Name() string {
	return "random"
}

// LeastBusy prefers the slot with the fewest calls in flight, first one wins ties.
type LeastBusy struct{}

func (l *LeastBusy) Next(slots []*Slot) *Slot {
	var selected *Slot
	for _, slot := range slots {
		if selected == nil || slot.InFlight() < selected.InFlight() {
			selected = slot
		}
	}

	return selected
}

func (l *LeastBusy) Name() string {
	return "least_busy"
}

// KeyPool spreads completion calls across API keys.
type KeyPool struct {
	slots    []*Slot
	strategy Strategy
}

func NewKeyPool(slots []*Slot, strategy Strategy) *KeyPool {
	return &KeyPool{slots: slots, strategy: strategy}
}

func (p *KeyPool) Slots() []*Slot {
	return p.slots
}

// Runs fn against the next available slot, guarded by that slot's breaker
func (p *KeyPool) Do(ctx context.Context, fn func(ctx context.Context, slot *Slot) error) error {
	ready := make([]*Slot, 0, len(p.slots))
	for _, slot := range p.slots {
		if slot.Breaker.Ready() {
			ready = append(ready, slot)
		}
	}

	slot := p.strategy.Next(ready)
	if slot == nil {
		return ErrNoKeys
	}

	slot.inFlight.Add(1)
	defer slot.inFlight.Add(-1)

	return slot.Breaker.Call(ctx, func(ctx context.Context) error {
		return fn(ctx, slot)
	})
}
