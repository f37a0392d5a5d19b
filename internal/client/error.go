package client

// Error is a constant error type we use for sentinel errors
type Error string

// Error allows our custom error type to implement the error interface
func (e Error) Error() string { return string(e) }

const (
	// TimeoutError indicates the request timed out
	TimeoutError = Error("timeout")

	// RejectedError indicates the hub refused a reading (HTTP 400)
	RejectedError = Error("reading rejected")

	// InvalidReadingError indicates a /data body without a temperature
	InvalidReadingError = Error("invalid reading")

	// UnexpectedError is for all other transport or HTTP errors
	UnexpectedError = Error("unexpected")
)
