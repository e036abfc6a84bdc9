package notify

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Event is one recorded notification
type Event struct {
	Kind    Kind
	Payload Payload
}

// Recorder is an in-memory Service for tests. Delivery failures can be
// injected per kind.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	fail   map[Kind]bool
}

// NewRecorder creates a recording notification sink
func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[Kind]bool)}
}

func (r *Recorder) Notify(ctx context.Context, kind Kind, p Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail[kind] {
		return goerr.Wrap(types.ErrNotificationFailed, "injected failure", goerr.V("kind", kind))
	}
	r.events = append(r.events, Event{Kind: kind, Payload: p})
	return nil
}

// FailKind makes subsequent notifications of the given kind fail
func (r *Recorder) FailKind(kind Kind, fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[kind] = fail
}

// Events returns a copy of all recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// CountKind returns how many events of the given kind were recorded
func (r *Recorder) CountKind(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
