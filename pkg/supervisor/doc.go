/*
Package supervisor owns the handler scheduler tasks.

New builds a slot/scheduler pair per configured handler plus the routing
table the front end dispatches through. Start runs each scheduler in its
own goroutine; Stop closes every slot and blocks until all schedulers
have drained, so the process never exits with a child unreaped.

Shutdown ordering matters: the HTTP front end stops first (no new
events), then Stop here, then process exit.
*/
package supervisor
