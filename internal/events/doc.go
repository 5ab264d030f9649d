// Package events provides the change notification used by the scheduling engine.
//
// After every successful record mutation the engine emits a RecordUpdatedEvent.
// Observers such as metrics collectors or HTTP caches subscribe to the emitter
// and unsubscribe explicitly when they go away. Dispatch is synchronous: the
// event has reached every subscriber by the time EmitEvent returns.
package events
