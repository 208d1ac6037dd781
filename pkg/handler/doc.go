/*
Package handler implements the per-handler scheduler: the state machine
that decides, for one configured handler, when to spawn its external
command given a stream of latest-value events, a minimum inter-burst
delay, a token-bucket rate limit, an optional periodic interval, and a
shutdown signal.

# Scheduling discipline

Each scheduler is a single goroutine owning all of its state. One
iteration waits for the earlier of its current deadline or a slot
change, then:

  - A slot change takes the newest value. The first event after a spawn
    anchors the burst; with a delay configured, the spawn is deferred to
    anchor+delay. Later events of the burst replace the payload without
    moving the anchor.
  - A deadline wake with no pending event either spawns (periodic
    configured) or merely reschedules (idle safety wake, one hour).
  - Event-driven spawns pass through the token bucket; when empty, the
    deadline moves to the earliest refill. Periodic spawns bypass the
    bucket.
  - A committed spawn clears the pending event, runs the child to
    completion, logs kind/user/program/elapsed/exit code, then
    reschedules. Child failures are swallowed: no retry, no back-off,
    no token refund.

All timing uses the monotonic clock carried by time.Time. At most one
child per handler is ever in flight, and events arriving while it runs
form the next burst. The scheduler exits when the slot closes; an
in-flight child is awaited, never killed.

# Environment contract

Spawned commands receive IMSE_USER and IMSE_EVENT always; IMSE_UNSEEN,
IMSE_FOLDER, IMSE_FROM and IMSE_SNIPPET on event-driven spawns; and
IMSE_REMOTE_IP/IMSE_REMOTE_PORT when the front end knew the peer.

# Usage

	tx, rx := watch.New[*message.Message]()
	sched := handler.New(handler.Spec{
		Event:   message.MessageNew,
		User:    "freaky",
		Delay:   30 * time.Second,
		Command: cmd,
	}, rx)
	go sched.Run()
	// ...
	tx.Close() // scheduler drains and returns
*/
package handler
