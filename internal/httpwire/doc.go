// Package httpwire converts structured HTTP/1.x messages to and from
// their wire representation.
//
// The [Encoder] serializes a [*model.Request] as a request line, the
// header fields in order, an empty line and the raw body. By default it
// terminates lines with "\n" rather than "\r\n", which is what the paired
// [Decoder] and the servers we talk to through tor accept.
//
// The [Decoder] parses a fully buffered response. It accepts both "\n"
// and "\r\n" line terminators, rejects truncated or malformed header
// sections and takes all the bytes after the empty line as the body,
// without interpreting Content-Length or Transfer-Encoding.
package httpwire
