package dispatch

import "github.com/fidelize/notifyd/internal/domain"

// Events carries the callback functions invoked by the dispatcher.
// Using a struct keeps the constructor signature clean; nil callbacks are
// replaced with no-ops so callers only wire what they consume.
type Events struct {
	// OnDispatched fires once per dispatch call that produced at least one
	// successful delivery.
	OnDispatched func(msg domain.Message, result domain.DispatchResult)

	// OnDeliveryFailed fires for every individual channel failure, whether
	// classified by the channel itself or by the dispatcher's panic
	// boundary. Downstream consumers use it for alerting and retry
	// scheduling.
	OnDeliveryFailed func(msg domain.Message, channelID string, result domain.DeliveryResult)
}

func (e Events) normalized() Events {
	if e.OnDispatched == nil {
		e.OnDispatched = func(domain.Message, domain.DispatchResult) {}
	}
	if e.OnDeliveryFailed == nil {
		e.OnDeliveryFailed = func(domain.Message, string, domain.DeliveryResult) {}
	}
	return e
}
