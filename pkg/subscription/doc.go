// Package subscription keeps ordered handler lists keyed by event kind.
//
// A Registry backs multicast delivery: several handlers may be registered
// for one kind, they are returned in registration order, and each
// registration is named by an ID so it can be removed again. Go function
// values cannot be compared, so the ID is the handle callers keep:
//
//	reg := subscription.NewRegistry[Kind, func(Event) error]()
//	id := reg.Add(KindPaymentMade, onPayment)
//	for _, h := range reg.Snapshot(KindPaymentMade) {
//	    _ = h(ev)
//	}
//	reg.Remove(KindPaymentMade, id)
//
// Dispatch iterates over a snapshot, so removing a handler never disturbs a
// delivery already in progress.
package subscription
