/*
Package server implements the HTTP front end of the dispatch daemon.

The front end accepts a PUT of a single small JSON object per
notification, applies the access policy, and fans the decoded message
out through the registry. It has no feedback channel from the handlers:
a 200 means the event was syntactically valid, whether or not any
handler matched.

# Request pipeline

  - Allow-list: peers outside the configured networks get 403.
  - Basic auth when configured; failures get 403.
  - Load shedding: a bounded semaphore caps in-flight requests, excess
    gets 503 immediately rather than queueing.
  - Body cap of 1 KiB (413 beyond it); stalled reads surface as 408.
  - JSON decode (400 on garbage), remote-address stamping, dispatch.

The response body is always empty.

# Lifecycle

Start binds synchronously so a bad listen address aborts startup, then
serves in the background, with TLS when cert and key are configured.
Shutdown drains in-flight requests; the caller then stops the
supervisor, so no event accepted before shutdown is lost by the front
end going away first.
*/
package server
