// Package gateway implements the tool-dispatch entry point: it parses a
// {tool, args} request, routes it through the registry, and wraps the
// outcome in a uniform success/error envelope.
package gateway

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error kinds returned in error envelopes.
const (
	KindMalformedRequest = "MalformedRequest"
	KindUnknownTool      = "UnknownTool"
	KindInvalidArguments = "InvalidArguments"
	KindWriteRejected    = "WriteRejected"
	KindRateLimited      = "RateLimited"
	KindTimeout          = "Timeout"
	KindUpstreamFailure  = "UpstreamFailure"
	KindInternalError    = "InternalError"
)

// Request is the transport body accepted by the dispatch endpoint.
type Request struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Envelope is the uniform response wrapper. Exactly one variant is
// populated: Result for success, Kind/Message for error.
type Envelope struct {
	Status     string `json:"status"`
	Result     any    `json:"result,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}

// Success wraps a handler result in a success envelope.
func Success(result any) Envelope {
	return Envelope{Status: StatusSuccess, Result: result}
}

// Failure builds an error envelope with the given kind and message.
func Failure(kind, message string) Envelope {
	return Envelope{Status: StatusError, Kind: kind, Message: message}
}
