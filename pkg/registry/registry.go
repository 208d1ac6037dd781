package registry

import (
	"github.com/Freaky/IMSErious/pkg/message"
	"github.com/Freaky/IMSErious/pkg/metrics"
	"github.com/Freaky/IMSErious/pkg/watch"
)

// Entry routes one (event, user) key to one handler's slot
type Entry struct {
	Event  message.Event
	User   string
	Sender *watch.Sender[*message.Message]
}

// Registry is the flat ordered routing table built once at startup.
// It is deliberately a sequence rather than a map: two handlers may
// share a routing key and each gets its own coalescing slot.
type Registry struct {
	entries []Entry
}

// New builds a registry from the given entries
func New(entries []Entry) *Registry {
	return &Registry{entries: entries}
}

// Len returns the number of routing entries
func (r *Registry) Len() int {
	return len(r.entries)
}

// Dispatch writes msg to the slot of every entry whose key matches and
// returns the number of matches. Writes never block; a handler that has
// already exited simply never observes the value.
func (r *Registry) Dispatch(msg *message.Message) int {
	matched := 0
	for _, e := range r.entries {
		if e.Event == msg.Event && e.User == msg.User {
			e.Sender.Send(msg)
			matched++
		}
	}
	metrics.DispatchesTotal.Add(float64(matched))
	return matched
}

// Close closes every slot, signalling all handlers to shut down
func (r *Registry) Close() {
	for _, e := range r.entries {
		e.Sender.Close()
	}
}
