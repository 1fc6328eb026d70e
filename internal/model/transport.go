package model

import "context"

// Transport sends an encoded HTTP request to a host over an anonymizing
// channel and returns the raw bytes of the response.
//
// Implementations MUST return a complete HTTP/1.x response (status line,
// header section and full body) or an error. They MUST NOT modify dc.
type Transport interface {
	Transmit(ctx context.Context, host string, request []byte, dc DirectoryCache) ([]byte, error)
}
