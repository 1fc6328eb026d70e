package httpwire

import (
	"errors"
	"fmt"
)

// ErrEncoding is the error wrapped by all the encoding failures.
var ErrEncoding = errors.New("httpwire: cannot encode request")

// ErrDecoding is the error wrapped by all the decoding failures.
var ErrDecoding = errors.New("httpwire: cannot decode message")

var (
	// ErrNoPathAndQuery indicates that the request URL has no path and no query.
	ErrNoPathAndQuery = fmt.Errorf("%w: URL without path or query", ErrEncoding)

	// ErrInvalidMethod indicates that the request method is not a valid token.
	ErrInvalidMethod = fmt.Errorf("%w: invalid method", ErrEncoding)

	// ErrInvalidVersion indicates that the version cannot be represented.
	ErrInvalidVersion = fmt.Errorf("%w: invalid version", ErrEncoding)

	// ErrMissingHeaderName indicates that a header field has an empty name.
	ErrMissingHeaderName = fmt.Errorf("%w: missing header name", ErrEncoding)

	// ErrInvalidHeaderValue indicates that a header value cannot be
	// represented as a header string.
	ErrInvalidHeaderValue = fmt.Errorf("%w: invalid header value", ErrEncoding)
)

var (
	// ErrIncomplete indicates that the message ends before the end of the
	// header section. We never wait for more bytes, so this is fatal.
	ErrIncomplete = fmt.Errorf("%w: incomplete message", ErrDecoding)

	// ErrNoVersion indicates a missing or invalid version token.
	ErrNoVersion = fmt.Errorf("%w: missing or invalid version", ErrDecoding)

	// ErrNoStatus indicates a missing or invalid status code.
	ErrNoStatus = fmt.Errorf("%w: missing or invalid status code", ErrDecoding)

	// ErrInvalidRequestLine indicates a malformed request line.
	ErrInvalidRequestLine = fmt.Errorf("%w: invalid request line", ErrDecoding)

	// ErrInvalidReason indicates a reason phrase containing control characters.
	ErrInvalidReason = fmt.Errorf("%w: invalid reason phrase", ErrDecoding)

	// ErrInvalidHeader indicates a header line we cannot turn into a field.
	ErrInvalidHeader = fmt.Errorf("%w: invalid header", ErrDecoding)

	// ErrTooManyHeaders indicates that the message has more header
	// fields than the configured maximum.
	ErrTooManyHeaders = fmt.Errorf("%w: too many headers", ErrDecoding)
)
