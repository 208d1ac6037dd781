/*
Package config loads and validates the daemon's YAML configuration.

A config file names the front end's bind address and endpoint, an
optional CIDR allow-list, connection and timeout limits, optional basic
auth and TLS, an optional metrics listener, and the handler list. All
validation happens at load time so a bad command line or a zero duration
aborts startup with a descriptive cause chain rather than surfacing
mid-dispatch.

# Example

	listen: "10.0.0.1:12525"
	endpoint: /notify
	allow:
	  - 10.0.0.0/8
	max_connections: 32
	timeout: 5s
	auth:
	  user: imse
	  pass: hunter2
	metrics_listen: "127.0.0.1:9090"
	handlers:
	  - event: MessageNew
	    user: freaky
	    delay: 30s
	    limit_period: 10m
	    limit_burst: 3
	    periodic: 1h
	    command: sudo -n -H -u freaky fdm -a eda -l fetch

Durations use Go syntax ("30s", "5m", "1h") and must be positive when
present. Unknown keys are rejected. The file is read through a 1 MiB
cap as a guard against being pointed at the wrong path.
*/
package config
