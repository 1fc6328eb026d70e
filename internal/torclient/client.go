// Package torclient sends a single HTTP/1.x request over tor and
// returns the structured response.
//
// The [Client] encodes the request with [httpwire], hands the bytes to
// a [model.Transport] along with the directory cache and decodes what
// the transport returns. There is no connection reuse, no redirect
// following and no retry: any failure is returned to the caller.
package torclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ooni/torhttp/internal/httpwire"
	"github.com/ooni/torhttp/internal/model"
	pkgerrors "github.com/pkg/errors"
)

// ErrMissingHost indicates that the request URL does not contain a host.
var ErrMissingHost = errors.New("torclient: no host found")

// ErrTransport wraps any error returned by the transport.
var ErrTransport = errors.New("torclient: transport failed")

// Config contains the configuration for creating a [*Client]. You need to
// fill all the MANDATORY fields. The zero value of OPTIONAL fields is fine.
type Config struct {
	// DirectoryCache is the OPTIONAL directory cache we pass to the transport.
	DirectoryCache model.DirectoryCache

	// Transport is the MANDATORY transport.
	Transport model.Transport

	// Logger is the OPTIONAL logger. By default we don't log.
	Logger model.Logger

	// LineTerminator is the OPTIONAL line terminator for requests.
	LineTerminator string

	// MaxHeaders is the OPTIONAL maximum number of response header fields.
	MaxHeaders int

	// AllowBinary OPTIONALLY disables the check ensuring the serialized
	// request is valid UTF-8. Some transports carry text only.
	AllowBinary bool
}

// Client sends HTTP requests over a [model.Transport]. A Client is safe
// for concurrent use because it never mutates its fields after [New].
type Client struct {
	allowBinary bool
	dc          model.DirectoryCache
	decoder     *httpwire.Decoder
	encoder     *httpwire.Encoder
	logger      model.Logger
	newID       func() string
	txp         model.Transport
}

// New creates a new [*Client] from config. The directory cache is copied
// so that later changes to config do not affect the client.
func New(config *Config) *Client {
	return &Client{
		allowBinary: config.AllowBinary,
		dc:          config.DirectoryCache,
		decoder:     &httpwire.Decoder{MaxHeaders: config.MaxHeaders},
		encoder:     &httpwire.Encoder{LineTerminator: config.LineTerminator},
		logger:      model.ValidLoggerOrDefault(config.Logger),
		newID:       uuid.NewString,
		txp:         config.Transport,
	}
}

// DirectoryCache returns the directory cache used by the client.
func (c *Client) DirectoryCache() model.DirectoryCache {
	return c.dc
}

// Send sends req and returns either a response or an error. The returned
// error wraps one of [ErrMissingHost], [httpwire.ErrEncoding], [ErrTransport]
// or [httpwire.ErrDecoding], so callers can tell which stage failed.
func (c *Client) Send(ctx context.Context, req *model.Request) (*model.Response, error) {
	id := c.newID()
	c.logger.Debugf("torclient: [%s] %s %s %s", id, req.Method, req.URL, req.Version)

	host, err := Host(req.URL)
	if err != nil {
		return nil, err
	}

	rawReq, err := c.encoder.Encode(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "serialize request")
	}
	if !c.allowBinary && !utf8.Valid(rawReq) {
		err := fmt.Errorf("%w: serialized request is not valid UTF-8", httpwire.ErrEncoding)
		return nil, pkgerrors.Wrap(err, "serialize request")
	}

	c.logger.Debugf("torclient: [%s] transmit %d bytes to %s...", id, len(rawReq), host)
	rawResp, err := c.txp.Transmit(ctx, host, rawReq, c.dc)
	c.logger.Debugf("torclient: [%s] transmit %d bytes to %s... %s", id, len(rawReq), host, model.ErrorToStringOrOK(err))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	resp, err := c.decoder.Decode(rawResp)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "deserialize response")
	}

	c.logger.Debugf("torclient: [%s] %s %d %s (%d header fields, %d body bytes)",
		id, resp.Version, resp.StatusCode, resp.Reason, len(resp.Header), len(resp.Body))
	return resp, nil
}

// Host returns the host of URL without the port, or an error wrapping
// [ErrMissingHost] if the URL does not contain a host.
func Host(URL string) (string, error) {
	parsed, err := url.Parse(URL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingHost, err.Error())
	}
	host := parsed.Hostname()
	if host == "" {
		return "", ErrMissingHost
	}
	return host, nil
}
