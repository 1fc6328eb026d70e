package httpwire

//
// Request encoding
//

import (
	"bytes"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/ooni/torhttp/internal/model"
	"golang.org/x/net/http/httpguts"
)

const (
	// LF is the default line terminator.
	LF = "\n"

	// CRLF is the line terminator mandated by RFC 9112.
	CRLF = "\r\n"
)

// Encoder serializes requests. The zero value is ready to use.
type Encoder struct {
	// LineTerminator is the OPTIONAL line terminator. When empty, we use [LF].
	LineTerminator string
}

func (e *Encoder) eol() string {
	if e.LineTerminator != "" {
		return e.LineTerminator
	}
	return LF
}

// EncodeRequest is like [Encoder.Encode] with a zero-value [Encoder].
func EncodeRequest(req *model.Request) ([]byte, error) {
	return (&Encoder{}).Encode(req)
}

// Encode serializes req. Header names and values are written verbatim
// and we do not add any header: the caller is responsible for setting
// Host, Content-Length and any other header the server needs.
//
// The returned error wraps [ErrEncoding] on failure.
func (e *Encoder) Encode(req *model.Request) ([]byte, error) {
	if !httpguts.ValidHeaderFieldName(req.Method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, req.Method)
	}
	target, err := RequestTarget(req.URL)
	if err != nil {
		return nil, err
	}
	if !req.Version.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVersion, req.Version)
	}

	eol := e.eol()
	buf := &bytes.Buffer{}
	buf.WriteString(req.Method)
	buf.WriteByte(' ')
	buf.WriteString(target)
	buf.WriteByte(' ')
	buf.WriteString(req.Version.String())
	buf.WriteString(eol)

	for idx, field := range req.Header {
		if field.Name == "" {
			return nil, fmt.Errorf("%w: field #%d", ErrMissingHeaderName, idx)
		}
		if !validHeaderString(field.Value) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidHeaderValue, field.Name)
		}
		buf.WriteString(field.Name)
		buf.WriteString(": ")
		buf.WriteString(field.Value)
		buf.WriteString(eol)
	}

	buf.WriteString(eol)
	buf.Write(req.Body)
	return buf.Bytes(), nil
}

// RequestTarget returns the path and query of URL, which is what we
// write in the request line. An absolute URL with an empty path, e.g.,
// "https://example.org", has target "/". It fails with [ErrNoPathAndQuery]
// when the URL has no path and query at all, e.g., the authority form
// "example.org:443", an opaque URL or a scheme-only URL.
func RequestTarget(URL string) (string, error) {
	parsed, err := url.Parse(URL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoPathAndQuery, err.Error())
	}
	if parsed.Opaque != "" {
		return "", fmt.Errorf("%w: opaque URL", ErrNoPathAndQuery)
	}
	path := parsed.EscapedPath()
	hasQuery := parsed.RawQuery != "" || parsed.ForceQuery
	if path == "" && !hasQuery && parsed.Host == "" {
		return "", ErrNoPathAndQuery
	}
	if path == "" {
		path = "/"
	}
	if hasQuery {
		return path + "?" + parsed.RawQuery, nil
	}
	return path, nil
}

// validHeaderString returns whether value is valid UTF-8 without
// any control character other than horizontal tab.
func validHeaderString(value string) bool {
	return utf8.ValidString(value) && httpguts.ValidHeaderFieldValue(value)
}
