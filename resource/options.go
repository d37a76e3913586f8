package resource

// Option is a function that configures a Resource.
// Options are applied in the order they are passed to New.
type Option[R any] func(*Resource[R])

// Heartbeat installs a supervision function started against each freshly
// created value. When it returns a non-nil error, the recovery handler
// decides what happens, exactly as for an error observed by an injected
// operation.
//
// Example:
//
//	resource.New(create, handle, resource.Heartbeat[*Conn](ping))
func Heartbeat[R any](hb HeartbeatFunc[R]) Option[R] {
	return func(r *Resource[R]) {
		r.heartbeat = hb
	}
}
