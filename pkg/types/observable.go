package types

// Observable is a read-only view of a value that changes over time.
type Observable[T any] interface {
	// Get returns the current value.
	Get() T

	// Subscribe returns a channel that receives the current value
	// immediately and then every later value. Slow readers only see the
	// latest value. cancel closes the channel.
	Subscribe() (values <-chan T, cancel func())
}
