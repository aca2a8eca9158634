package registry

import "fmt"

// ValidationError reports a client-side precondition failure. Requests that
// fail validation are never sent to the server.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// RemoteError reports a non-2xx response from the device registry. Body holds
// the raw response body text so the caller can surface the server's message.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// NetworkError reports a transport-level failure (unreachable host, closed
// connection) before any HTTP status was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
