package supervisor

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Freaky/IMSErious/pkg/handler"
	"github.com/Freaky/IMSErious/pkg/log"
	"github.com/Freaky/IMSErious/pkg/message"
	"github.com/Freaky/IMSErious/pkg/registry"
	"github.com/Freaky/IMSErious/pkg/watch"
)

// Supervisor owns the set of handler scheduler tasks and the routing
// table that feeds them
type Supervisor struct {
	registry   *registry.Registry
	schedulers []*handler.Scheduler
	logger     zerolog.Logger
	wg         sync.WaitGroup
}

// New wires one slot and one scheduler per handler spec and builds the
// routing table. Nothing runs until Start.
func New(specs []handler.Spec) *Supervisor {
	entries := make([]registry.Entry, 0, len(specs))
	schedulers := make([]*handler.Scheduler, 0, len(specs))

	for _, spec := range specs {
		tx, rx := watch.New[*message.Message]()
		entries = append(entries, registry.Entry{
			Event:  spec.Event,
			User:   spec.User,
			Sender: tx,
		})
		schedulers = append(schedulers, handler.New(spec, rx))
	}

	return &Supervisor{
		registry:   registry.New(entries),
		schedulers: schedulers,
		logger:     log.WithComponent("supervisor"),
	}
}

// Registry returns the routing table for the front end
func (s *Supervisor) Registry() *registry.Registry {
	return s.registry
}

// Start launches one goroutine per handler scheduler
func (s *Supervisor) Start() {
	for _, sched := range s.schedulers {
		s.wg.Add(1)
		go func(sched *handler.Scheduler) {
			defer s.wg.Done()
			sched.Run()
		}(sched)
	}
	s.logger.Info().Int("handlers", len(s.schedulers)).Msg("Handlers started")
}

// Stop closes every slot and waits for all schedulers to exit. An
// in-flight child process is awaited, not killed.
func (s *Supervisor) Stop() {
	s.logger.Debug().Msg("Draining handlers")
	s.registry.Close()
	s.wg.Wait()
	s.logger.Info().Msg("Handlers stopped")
}
