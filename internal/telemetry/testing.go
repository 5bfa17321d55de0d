package telemetry

import (
	"context"
	"sync"
)

// RecordingSink keeps events in memory for tests.
type RecordingSink struct {
	Traces []string
	Events []Event
	mu     sync.Mutex
}

// StartTrace records the trace name.
func (r *RecordingSink) StartTrace(ctx context.Context, name string, _ map[string]any) (context.Context, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Traces = append(r.Traces, name)
	return ctx, func() {}
}

// Emit records event.
func (r *RecordingSink) Emit(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
}

// EventNames returns recorded event names in order.
func (r *RecordingSink) EventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name
	}
	return names
}

// Find returns the first event named name.
func (r *RecordingSink) Find(name string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}
