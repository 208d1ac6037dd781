/*
Package watch implements a single-slot, overwriting, most-recent-wins
channel with change detection.

A slot holds at most one pending value. Writers replace whatever the reader
has not yet observed, so a burst of writes is naturally coalesced into the
single newest value; the reader observes "changed since my last read",
never an intermediate value. This is deliberately not a queue: a bounded
queue would either block the writer or drop the newest value under
flooding, and both change the delivery semantics handlers depend on.

# Contract

  - Send replaces any unobserved value; concurrent Sends race safely and
    the most recent write wins.
  - Changed returns a channel closed when the slot differs from the
    reader's last observation, or when the sender is gone.
  - Observe returns the current value and marks it observed.
  - Close wakes the reader a final time; the reader distinguishes close
    from change by Observe reporting no change and Closed returning true.

# Usage

	tx, rx := watch.New[*message.Message]()

	// writer (front end)
	tx.Send(msg)

	// reader (handler scheduler)
	select {
	case <-rx.Changed():
		if v, changed := rx.Observe(); changed {
			// newest value of the burst
		} else if rx.Closed() {
			// sender gone, shut down
		}
	case <-timer.C:
	}

The reading half is owned by exactly one goroutine; the writing half may
be shared.
*/
package watch
