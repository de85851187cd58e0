// Package supervisor runs the agent executable for a session.
//
// Start spawns the process and returns once the agent accepts connections on
// its command port, probing with connection.WaitReady instead of sleeping
// for a fixed delay. Stop interrupts the process, waits a bounded grace
// period and then kills it.
//
//	p := supervisor.New(supervisor.Config{
//	    Binary:       "/usr/local/bin/within-agent",
//	    Args:         []string{"-port", "9091"},
//	    ReadyAddress: "127.0.0.1:9091",
//	})
//	if err := p.Start(ctx); err != nil {
//	    return err
//	}
//	defer p.Stop(context.Background())
package supervisor
