// Package callback receives the agent's asynchronous events.
//
// The agent connects to the bridge's listener and delivers events as calls,
// one opcode per event kind. The bridge decodes each call into a typed Event,
// hands it to every handler subscribed to that kind in registration order,
// and acknowledges the call once all handlers have returned. Handlers run on
// the goroutine serving the agent's connection, so events from one
// connection are delivered in order.
//
// A handler that returns an error or panics is logged and skipped; the
// remaining handlers still run.
//
//	b := callback.New(callback.Config{Port: 9092})
//	id := b.Subscribe(callback.KindPaymentMade, func(ev callback.Event) error {
//	    p := ev.(callback.PaymentMade)
//	    fmt.Println("paid", p.TotalPrice, p.Currency)
//	    return nil
//	})
//	if err := b.Start(ctx); err != nil {
//	    return err
//	}
//	defer b.Stop()
//	...
//	b.Unsubscribe(callback.KindPaymentMade, id)
//
// The bridge moves NotStarted → Started → Stopped once; a stopped bridge
// cannot be restarted.
package callback
