package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a statistics request failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidArgument means the request was rejected before any I/O.
	KindInvalidArgument
	// KindCancelled means the caller's context ended while polling.
	KindCancelled
	// KindTransport means the request never produced an HTTP response.
	KindTransport
	// KindHTTPStatus means GitHub answered with a status other than 200, 202 or 204.
	KindHTTPStatus
	// KindDecode means the response body did not match the expected shape.
	KindDecode
	// KindExhausted means GitHub was still computing when the poll budget ran out.
	KindExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindCancelled:
		return "cancelled"
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http status"
	case KindDecode:
		return "decode"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// StatsError is returned by every statistics operation that fails.
type StatsError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Message    string
	Attempts   int
	Err        error
}

func (e *StatsError) Error() string {
	msg := fmt.Sprintf("github stats %s", e.Kind)
	if e.Endpoint != "" {
		msg += fmt.Sprintf(" (%s)", e.Endpoint)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *StatsError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first StatsError in err's chain.
func KindOf(err error) ErrorKind {
	var statsErr *StatsError
	if errors.As(err, &statsErr) {
		return statsErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries a StatsError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func invalidArgument(field, message string) *StatsError {
	return &StatsError{Kind: KindInvalidArgument, Message: fmt.Sprintf("%s %s", field, message)}
}
