package model

//
// Structured HTTP/1.x messages
//

import (
	"fmt"
	"strings"
)

// Version is the HTTP protocol version of a message. Only HTTP/1.0 and
// HTTP/1.1 are representable. The zero value is HTTP/1.1.
type Version int

const (
	// HTTP11 is HTTP/1.1.
	HTTP11 Version = iota

	// HTTP10 is HTTP/1.0.
	HTTP10
)

// String returns the version token used on the wire (e.g., "HTTP/1.1").
func (v Version) String() string {
	switch v {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// Valid returns whether v is one of the representable versions.
func (v Version) Valid() bool {
	return v == HTTP10 || v == HTTP11
}

// HeaderField is a single header line.
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Duplicate names are
// allowed and kept in the order in which they were added: we never fold
// a Header into a map because that would lose both order and duplicates.
type Header []HeaderField

// Add appends a new field to the header.
func (h *Header) Add(name, value string) {
	*h = append(*h, HeaderField{Name: name, Value: value})
}

// Get returns the value of the first field whose name matches name
// case-insensitively, or the empty string.
func (h Header) Get(name string) string {
	for _, field := range h {
		if strings.EqualFold(field.Name, name) {
			return field.Value
		}
	}
	return ""
}

// Values returns the values of all the fields matching name, in order.
func (h Header) Values(name string) (out []string) {
	for _, field := range h {
		if strings.EqualFold(field.Name, name) {
			out = append(out, field.Value)
		}
	}
	return
}

// Len returns the number of fields, duplicates included.
func (h Header) Len() int {
	return len(h)
}

// Clone returns a copy of the header.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	return append(Header{}, h...)
}

// Request is a structured HTTP request.
type Request struct {
	// Method is the request method (e.g., "GET").
	Method string

	// URL is the absolute URL of the resource. The encoder only uses its
	// path and query while the client extracts the host from it.
	URL string

	// Version is the protocol version.
	Version Version

	// Header contains the header fields, sent verbatim. We do not add
	// any header (e.g., Host, Content-Length) on behalf of the caller.
	Header Header

	// Body is the request body, possibly empty.
	Body []byte
}

// NewRequest creates a new HTTP/1.1 request with empty header and body.
func NewRequest(method, URL string) *Request {
	return &Request{
		Method:  method,
		URL:     URL,
		Version: HTTP11,
		Header:  Header{},
		Body:    []byte{},
	}
}

// Response is a structured HTTP response.
type Response struct {
	// StatusCode is the status code, within [100, 599].
	StatusCode int

	// Reason is the reason phrase, which MAY be empty.
	Reason string

	// Version is the protocol version.
	Version Version

	// Header contains the header fields in the order we received them.
	Header Header

	// Body contains all the bytes following the header section.
	Body []byte
}
