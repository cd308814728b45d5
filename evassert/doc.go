/*
Package evassert offers an API to assert on the events a publish/subscribe
object emits, waiting for them asynchronously with a bounded timeout.

Assertions are driven by an Acquirer. An acquisition subscribes a listener on a
channel of a Subscribable subject, collects the arguments of every firing as a
Record, and settles exactly once: when the required number of firings happened,
when the timeout elapses, or when the context is done. The listener is always
removed from the subject before the acquisition returns.

Subscribable

Any object with Subscribe and Unsubscribe methods can be observed. The emitter
package offers an in-process implementation and an adapter for channel based
buses; the fswatch and wsemitter packages observe file systems and websocket
connections.

Consumption modes

AssertNth waits for the nth firing and compares it against an expectation.
Expectations built with Expect compare the whole argument list with a single
verb call; expectations built with ExpectValues compare every argument with
its own expected value, concurrently.

	acq := evassert.NewAcquirer(evassert.WithTimeout(time.Second))
	err := acq.AssertNth(ctx, em, "foo", 2, evassert.Expect("to equal", []any{"baz"}))

AssertAll waits for as many firings as events are listed, and compares the
captured RecordSet with them. An empty list asserts that nothing fires within
the timeout.

Capture starts a passive capture that keeps collecting firings until stopped;
its AssertEvent method queries a captured event by its 1-based index.

Verbs

Comparisons are delegated to an Engine. The default one knows "to equal",
"not to equal", "to be", "not to be", "to be nil", "not to be nil",
"to contain", "not to contain", "to match", "to have length" and
"to satisfy"; more verbs can be registered with Engine.Add.
*/
package evassert
