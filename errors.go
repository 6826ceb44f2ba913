package rosapi

import "errors"

// Error kinds returned by this package. Use errors.Is to test for a kind;
// wrapped errors (e.g. "rosapi: dial: %w") still satisfy errors.Is.
var (
	// ErrConfig is returned when a Config fails validation: a required
	// field is empty or a field's value is out of range.
	ErrConfig = errors.New("rosapi: invalid config")

	// ErrTransport wraps socket open/read/write/TLS failures. It is
	// fatal to the connection it occurred on.
	ErrTransport = errors.New("rosapi: transport error")

	// ErrEncode is returned when a word's length exceeds the maximum
	// the length codec can represent (0xFFFFFFFF).
	ErrEncode = errors.New("rosapi: encode error")

	// ErrProtocol covers a malformed length prefix, an unexpected reply
	// shape, or a truncated frame.
	ErrProtocol = errors.New("rosapi: protocol error")

	// ErrAuthDenied is returned when the server rejects a login attempt
	// with !trap or !fatal.
	ErrAuthDenied = errors.New("rosapi: authentication denied")

	// ErrConnectionFailed is returned by Dial when every retry attempt
	// has been exhausted.
	ErrConnectionFailed = errors.New("rosapi: connection failed")

	// ErrProtocolMisuse is returned for caller-side contract violations,
	// such as calling Run again before the previous reply was consumed,
	// or calling Run on a connection that is not Ready.
	ErrProtocolMisuse = errors.New("rosapi: protocol misuse")
)
