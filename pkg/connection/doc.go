// Package connection waits for an agent endpoint to become reachable.
//
// An agent that was just spawned needs a moment before its command port
// accepts connections. Rather than sleeping for a fixed delay, callers probe
// with WaitReady, which retries a connect attempt with exponential backoff
// until it succeeds or the probe's timeout expires:
//
//	c, err := connection.WaitReady(ctx, connection.ProbeConfig{Timeout: 5 * time.Second},
//	    func(ctx context.Context) (*client.Client, error) {
//	        return client.Dial(ctx, cfg)
//	    })
//
// # Backoff
//
// Delays start at 50ms and double up to 1s:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// The jitter keeps several probes started together from retrying in step.
package connection
