package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before probing
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes admitted while half-open; that
	// many consecutive successes close the circuit
	HalfOpenRequests uint32
	// OnStateChange is called after each transition, outside the lock
	OnStateChange func(name string, from, to State)
}

// Counts holds the statistics of the current state
type Counts struct {
	Requests            uint32
	Successes           uint32
	Failures            uint32
	ConsecutiveFailures uint32
}

// Breaker guards calls to a flaky dependency
type Breaker struct {
	name     string
	settings Settings
	clock    clock.Clock

	mu         sync.Mutex
	state      State
	counts     Counts
	openedAt   time.Time
	generation uint64
	pending    []transition
}

type transition struct {
	from, to State
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if settings.HalfOpenRequests == 0 {
		settings.HalfOpenRequests = 1
	}
	return &Breaker{name: name, settings: settings, clock: clock.New()}
}

// WithClock substitutes the clock used for the open timeout
func (b *Breaker) WithClock(c clock.Clock) *Breaker {
	b.clock = c
	return b
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	state, _ := b.current()
	b.mu.Unlock()
	b.flush()
	return state
}

// Counts returns a copy of the counts of the current state
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute runs fn if the breaker admits it and records the outcome
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	generation, err := b.admit()
	b.flush()
	if err != nil {
		return zero, err
	}

	succeeded := false
	defer func() {
		b.record(generation, succeeded)
		b.flush()
	}()

	v, err := fn()
	succeeded = err == nil
	return v, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current()
	switch {
	case state == StateOpen:
		return generation, ErrCircuitOpen
	case state == StateHalfOpen && b.counts.Requests >= b.settings.HalfOpenRequests:
		return generation, ErrTooManyRequests
	}
	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) record(before uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current()
	if generation != before {
		return
	}

	if success {
		b.counts.Successes++
		b.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen && b.counts.Successes >= b.settings.HalfOpenRequests {
			b.setState(StateClosed)
		}
		return
	}
	b.counts.Failures++
	b.counts.ConsecutiveFailures++
	if state == StateHalfOpen || b.counts.ConsecutiveFailures >= b.settings.FailureThreshold {
		b.setState(StateOpen)
	}
}

// current moves an expired open circuit to half-open; callers hold mu
func (b *Breaker) current() (State, uint64) {
	if b.state == StateOpen && !b.clock.Now().Before(b.openedAt.Add(b.settings.OpenTimeout)) {
		b.setState(StateHalfOpen)
	}
	return b.state, b.generation
}

// setState queues the transition for flush; callers hold mu
func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	b.pending = append(b.pending, transition{from: b.state, to: to})
	b.state = to
	b.counts = Counts{}
	b.generation++
	if to == StateOpen {
		b.openedAt = b.clock.Now()
	}
}

// flush delivers queued transitions outside the lock
func (b *Breaker) flush() {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if b.settings.OnStateChange == nil {
		return
	}
	for _, t := range pending {
		b.settings.OnStateChange(b.name, t.from, t.to)
	}
}
