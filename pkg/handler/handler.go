package handler

import (
	"errors"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Freaky/IMSErious/pkg/command"
	"github.com/Freaky/IMSErious/pkg/log"
	"github.com/Freaky/IMSErious/pkg/message"
	"github.com/Freaky/IMSErious/pkg/metrics"
	"github.com/Freaky/IMSErious/pkg/watch"
)

const (
	// idleWake is the safety wake cadence when no periodic interval is
	// configured; it recomputes the deadline and never spawns.
	idleWake = time.Hour

	defaultLimitPeriod = 30 * time.Second
	defaultLimitBurst  = 1
)

// Spec is the immutable configuration for one handler scheduler
type Spec struct {
	// Event and User form the routing key. The key need not be unique:
	// handlers sharing a key each receive their own copy of a message.
	Event message.Event
	User  string

	// Delay is the minimum wall time between the first event of a
	// burst and the spawn that consumes it. Zero means spawn at once.
	Delay time.Duration

	// LimitPeriod and LimitBurst parameterise the token bucket
	// consulted by event-driven spawns. Zero values take the defaults
	// (30s, 1).
	LimitPeriod time.Duration
	LimitBurst  int

	// Periodic, when non-zero, also fires the command on this cadence
	// in the absence of events.
	Periodic time.Duration

	// Command is the child process to spawn.
	Command *command.Command
}

// Scheduler runs the per-handler dispatch loop: it consumes the
// latest-value slot, applies the delay/rate/periodic policy, and spawns
// the configured command. At most one child is ever in flight.
type Scheduler struct {
	spec     Spec
	rx       *watch.Receiver[*message.Message]
	logger   zerolog.Logger
	limiter  *rate.Limiter
	periodic time.Duration

	// execute performs one spawn; swapped out by scenario tests
	execute func(overlay map[string]string) error
}

// New creates a scheduler for the given spec, reading from rx
func New(spec Spec, rx *watch.Receiver[*message.Message]) *Scheduler {
	period := spec.LimitPeriod
	if period <= 0 {
		period = defaultLimitPeriod
	}
	burst := spec.LimitBurst
	if burst <= 0 {
		burst = defaultLimitBurst
	}
	wake := spec.Periodic
	if wake <= 0 {
		wake = idleWake
	}

	s := &Scheduler{
		spec:     spec,
		rx:       rx,
		logger:   log.WithHandler(spec.Event.String(), spec.User),
		limiter:  rate.NewLimiter(rate.Every(period/time.Duration(burst)), burst),
		periodic: wake,
	}
	s.execute = s.runCommand
	return s
}

// Run executes the scheduler loop until the slot is closed. It blocks;
// the supervisor runs one goroutine per handler.
func (s *Scheduler) Run() {
	metrics.HandlersActive.Inc()
	defer metrics.HandlersActive.Dec()
	s.logger.Debug().Msg("Handler started")

	var (
		latest       *message.Message
		firstEventAt time.Time
	)
	deadline := time.Now().Add(s.periodic)
	timer := time.NewTimer(s.periodic)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(time.Until(deadline))

		var fromSlot bool
		select {
		case <-s.rx.Changed():
			fromSlot = true
		case <-timer.C:
			// a slot change racing the timer wins; the deadline is
			// recomputed next iteration either way
			select {
			case <-s.rx.Changed():
				fromSlot = true
			default:
			}
		}

		now := time.Now()

		if fromSlot {
			msg, changed := s.rx.Observe()
			if !changed {
				if s.rx.Closed() {
					s.logger.Debug().Msg("Handler shutting down")
					return
				}
				continue
			}

			// latest wins; the burst stays anchored at its first event
			// so flooding cannot postpone the spawn indefinitely
			latest = msg
			if firstEventAt.IsZero() {
				firstEventAt = now
			}
			s.logger.Trace().Uint32("unseen", msg.Unseen).Msg("Notification received")

			if s.spec.Delay > 0 {
				if due := firstEventAt.Add(s.spec.Delay); now.Before(due) {
					deadline = due
					continue
				}
			}
		} else if latest == nil {
			if s.spec.Periodic == 0 {
				// idle safety wake: reschedule, never spawn
				deadline = now.Add(s.periodic)
				continue
			}
			// periodic spawn: proceeds with no payload and bypasses
			// the rate limiter
		}

		// Event-driven spawns consume a token; when none is available
		// the deadline moves to the earliest refill.
		if latest != nil {
			res := s.limiter.ReserveN(now, 1)
			if d := res.DelayFrom(now); d > 0 {
				res.CancelAt(now)
				metrics.RateLimited.Inc()
				s.logger.Trace().Dur("defer", d).Msg("Rate limited")
				deadline = now.Add(d)
				continue
			}
		}

		// Commit: take the pending message and reset the burst anchor.
		// Anything arriving while the child runs starts the next burst.
		msg := latest
		latest = nil
		firstEventAt = time.Time{}

		s.spawn(msg)

		deadline = time.Now().Add(s.periodic)
	}
}

// spawn runs the child to completion and logs the outcome. Failures are
// logged and swallowed; they never affect future scheduling and the
// consumed token is not refunded.
func (s *Scheduler) spawn(msg *message.Message) {
	timer := metrics.NewTimer()
	err := s.execute(s.environment(msg))
	elapsed := timer.Duration()
	timer.ObserveDuration(metrics.SpawnDuration)

	program := s.spec.Command.Program()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		metrics.SpawnsTotal.WithLabelValues("ok").Inc()
		s.logger.Info().
			Str("program", program).
			Dur("elapsed", elapsed).
			Int("rc", 0).
			Msg("Execution complete")
	case errors.As(err, &exitErr):
		metrics.SpawnsTotal.WithLabelValues("nonzero").Inc()
		s.logger.Info().
			Str("program", program).
			Dur("elapsed", elapsed).
			Int("rc", exitErr.ExitCode()).
			Msg("Execution complete")
	default:
		metrics.SpawnsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn().
			Err(err).
			Str("program", program).
			Dur("elapsed", elapsed).
			Msg("Execution failed")
	}
}

// environment builds the overlay passed to the child. Event fields are
// present only on event-driven spawns; the remote address only when the
// front end knew it.
func (s *Scheduler) environment(msg *message.Message) map[string]string {
	env := map[string]string{
		"IMSE_USER":  s.spec.User,
		"IMSE_EVENT": s.spec.Event.String(),
	}
	if msg == nil {
		return env
	}
	if msg.RemoteAddr.IsValid() {
		env["IMSE_REMOTE_IP"] = msg.RemoteAddr.Addr().String()
		env["IMSE_REMOTE_PORT"] = strconv.Itoa(int(msg.RemoteAddr.Port()))
	}
	env["IMSE_UNSEEN"] = strconv.FormatUint(uint64(msg.Unseen), 10)
	env["IMSE_FOLDER"] = msg.Folder
	env["IMSE_FROM"] = msg.From
	env["IMSE_SNIPPET"] = msg.Snippet
	return env
}

func (s *Scheduler) runCommand(overlay map[string]string) error {
	return s.spec.Command.Cmd(overlay).Run()
}
