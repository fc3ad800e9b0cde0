package llm

import "fmt"

// Layer attributes a decode failure to the service envelope or to the model's
// inner payload. The two parse steps fail independently and must stay
// distinguishable.
type Layer string

const (
	LayerEnvelope Layer = "envelope"
	LayerPayload  Layer = "payload"
)

// ServiceUnreachableError covers transport failure against the extraction
// service: connection refused, timeout, or a non-2xx status.
type ServiceUnreachableError struct {
	Endpoint string
	Status   int // 0 when the request never completed
	Err      error
}

func (e *ServiceUnreachableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("extraction service %s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("extraction service %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *ServiceUnreachableError) Unwrap() error { return e.Err }

// MalformedResponseError covers a JSON decode failure at either layer.
type MalformedResponseError struct {
	Layer Layer
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s in extraction response: %v", e.Layer, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
