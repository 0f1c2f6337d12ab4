package reconcile

import (
	"sync"
	"time"
)

type Status int

const (
	StatusIdle Status = iota
	StatusSyncing
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSyncing:
		return "syncing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is the observable sync status published by the reconciler.
type State struct {
	Status  Status
	Message string
}

// StateFeed is a subscribable state container with current-value semantics:
// a new subscriber immediately receives the latest state on its channel.
type StateFeed struct {
	mu      sync.Mutex
	current State
	seq     uint64
	subs    map[int]chan State
	nextID  int
}

func NewStateFeed() *StateFeed {
	return &StateFeed{subs: make(map[int]chan State)}
}

// Current returns the latest published state.
func (f *StateFeed) Current() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Subscribe registers a listener and delivers the current state right away.
// The returned cancel func must be called to release the subscription. A
// subscriber that falls behind misses intermediate states; Current always has
// the latest.
func (f *StateFeed) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	ch <- f.current
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// publish records s as current and fans it out. The returned sequence number
// lets the caller revert the state later only if nothing newer was published.
func (f *StateFeed) publish(s State) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = s
	f.seq++
	for _, ch := range f.subs {
		select {
		case ch <- s:
		default:
		}
	}
	return f.seq
}

// revertAfter returns the feed to Idle after d, unless a newer state was
// published in the meantime. A non-positive d reverts immediately.
func (f *StateFeed) revertAfter(d time.Duration, seq uint64) {
	revert := func() {
		f.mu.Lock()
		stale := f.seq != seq
		f.mu.Unlock()
		if !stale {
			f.publish(State{Status: StatusIdle})
		}
	}
	if d <= 0 {
		revert()
		return
	}
	time.AfterFunc(d, revert)
}
