package mocks

import (
	"context"

	"github.com/ooni/torhttp/internal/model"
)

// Transport allows mocking a [model.Transport].
type Transport struct {
	MockTransmit func(ctx context.Context, host string, request []byte, dc model.DirectoryCache) ([]byte, error)
}

var _ model.Transport = &Transport{}

// Transmit calls MockTransmit.
func (t *Transport) Transmit(ctx context.Context, host string, request []byte, dc model.DirectoryCache) ([]byte, error) {
	return t.MockTransmit(ctx, host, request, dc)
}
