package httpwire

//
// Response (and request) decoding
//

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ooni/torhttp/internal/model"
	"golang.org/x/net/http/httpguts"
)

// DefaultMaxHeaders is the default maximum number of header fields.
const DefaultMaxHeaders = 16

// Decoder parses fully buffered messages. The zero value is ready to use.
type Decoder struct {
	// MaxHeaders is the OPTIONAL maximum number of header fields we accept
	// before failing with [ErrTooManyHeaders]. When zero or negative, we
	// use [DefaultMaxHeaders].
	MaxHeaders int
}

func (d *Decoder) maxHeaders() int {
	if d.MaxHeaders > 0 {
		return d.MaxHeaders
	}
	return DefaultMaxHeaders
}

// DecodeResponse is like [Decoder.Decode] with a zero-value [Decoder].
func DecodeResponse(raw []byte) (*model.Response, error) {
	return (&Decoder{}).Decode(raw)
}

// Decode parses raw as a complete HTTP/1.x response. The body is a copy
// of all the bytes following the empty line that terminates the header
// section. The returned error wraps [ErrDecoding] on failure.
func (d *Decoder) Decode(raw []byte) (*model.Response, error) {
	sc := &lineScanner{buf: raw}
	sc.skipEmptyLines()
	line, good := sc.next()
	if !good {
		return nil, ErrIncomplete
	}
	version, code, reason, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}
	header, err := d.parseHeader(sc)
	if err != nil {
		return nil, err
	}
	return &model.Response{
		StatusCode: code,
		Reason:     reason,
		Version:    version,
		Header:     header,
		Body:       sc.rest(),
	}, nil
}

// DecodeRequest parses raw as a complete HTTP/1.x request. The URL field
// of the returned request contains the request target verbatim.
func (d *Decoder) DecodeRequest(raw []byte) (*model.Request, error) {
	sc := &lineScanner{buf: raw}
	sc.skipEmptyLines()
	line, good := sc.next()
	if !good {
		return nil, ErrIncomplete
	}
	method, target, version, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}
	header, err := d.parseHeader(sc)
	if err != nil {
		return nil, err
	}
	return &model.Request{
		Method:  method,
		URL:     target,
		Version: version,
		Header:  header,
		Body:    sc.rest(),
	}, nil
}

func (d *Decoder) parseHeader(sc *lineScanner) (model.Header, error) {
	header := model.Header{}
	for {
		line, good := sc.next()
		if !good {
			return nil, ErrIncomplete
		}
		if len(line) == 0 {
			return header, nil
		}
		if len(header) >= d.maxHeaders() {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyHeaders, d.maxHeaders())
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		header.Add(name, value)
	}
}

// lineScanner splits a buffer into lines terminated by "\n" or "\r\n".
type lineScanner struct {
	buf []byte
	off int
}

// next returns the next line without its terminator or false when
// the buffer does not contain another complete line.
func (sc *lineScanner) next() ([]byte, bool) {
	idx := bytes.IndexByte(sc.buf[sc.off:], '\n')
	if idx < 0 {
		return nil, false
	}
	line := sc.buf[sc.off : sc.off+idx]
	sc.off += idx + 1
	return bytes.TrimSuffix(line, []byte("\r")), true
}

// skipEmptyLines skips the empty lines preceding the start line.
func (sc *lineScanner) skipEmptyLines() {
	for {
		rest := sc.buf[sc.off:]
		switch {
		case bytes.HasPrefix(rest, []byte("\r\n")):
			sc.off += 2
		case bytes.HasPrefix(rest, []byte("\n")):
			sc.off++
		default:
			return
		}
	}
}

// rest returns a copy of the bytes after the current offset.
func (sc *lineScanner) rest() []byte {
	return append([]byte{}, sc.buf[sc.off:]...)
}

// parseVersion parses an "HTTP/1.x" token. A zero minor version maps to
// HTTP/1.0 and any other digit maps to HTTP/1.1.
func parseVersion(token string) (model.Version, bool) {
	const prefix = "HTTP/1."
	if len(token) != len(prefix)+1 || !strings.HasPrefix(token, prefix) {
		return 0, false
	}
	switch minor := token[len(prefix)]; {
	case minor == '0':
		return model.HTTP10, true
	case minor >= '1' && minor <= '9':
		return model.HTTP11, true
	default:
		return 0, false
	}
}

func parseStatusLine(line []byte) (model.Version, int, string, error) {
	token, rest, _ := strings.Cut(string(line), " ")
	version, good := parseVersion(token)
	if !good {
		return 0, 0, "", fmt.Errorf("%w: %q", ErrNoVersion, token)
	}
	codeText, reason, _ := strings.Cut(rest, " ")
	if len(codeText) != 3 {
		return 0, 0, "", fmt.Errorf("%w: %q", ErrNoStatus, codeText)
	}
	code, err := strconv.Atoi(codeText)
	if err != nil || code < 100 || code > 599 {
		return 0, 0, "", fmt.Errorf("%w: %q", ErrNoStatus, codeText)
	}
	if !validReason(reason) {
		return 0, 0, "", ErrInvalidReason
	}
	return version, code, reason, nil
}

func parseRequestLine(line []byte) (string, string, model.Version, error) {
	v := strings.Split(string(line), " ")
	if len(v) != 3 || !httpguts.ValidHeaderFieldName(v[0]) || v[1] == "" {
		return "", "", 0, fmt.Errorf("%w: %q", ErrInvalidRequestLine, line)
	}
	version, good := parseVersion(v[2])
	if !good {
		return "", "", 0, fmt.Errorf("%w: %q", ErrNoVersion, v[2])
	}
	return v[0], v[1], version, nil
}

// parseHeaderLine splits a "name: value" line. We reject whitespace
// before the colon and obsolete line folding like RFC 9112 says.
func parseHeaderLine(line []byte) (string, string, error) {
	name, value, found := strings.Cut(string(line), ":")
	if !found || !httpguts.ValidHeaderFieldName(name) {
		return "", "", fmt.Errorf("%w: invalid name in %q", ErrInvalidHeader, line)
	}
	value = strings.Trim(value, " \t")
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", "", fmt.Errorf("%w: invalid value for %s", ErrInvalidHeader, name)
	}
	return name, value, nil
}

// validReason returns whether the reason phrase only contains
// HTAB, SP, VCHAR and obs-text.
func validReason(reason string) bool {
	for idx := 0; idx < len(reason); idx++ {
		if c := reason[idx]; (c < ' ' && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}
