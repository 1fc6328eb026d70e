package httpwire

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ooni/torhttp/internal/model"
)

func TestEncoderEncode(t *testing.T) {
	// testcase is a test case implemented by this function.
	type testcase struct {
		// name is the test case name
		name string

		// encoder is the encoder to use
		encoder *Encoder

		// request is the request to encode
		request *model.Request

		// expectErr is the expected error
		expectErr error

		// expectData is the expected serialized request
		expectData string
	}

	testcases := []testcase{{
		name:    "GET with Host header and empty body",
		encoder: &Encoder{},
		request: &model.Request{
			Method:  "GET",
			URL:     "https://example.org/index.html",
			Version: model.HTTP11,
			Header:  model.Header{{Name: "Host", Value: "example.org"}},
		},
		expectErr:  nil,
		expectData: "GET /index.html HTTP/1.1\nHost: example.org\n\n",
	}, {
		name:    "the URL may be just a path",
		encoder: &Encoder{},
		request: &model.Request{
			Method:  "GET",
			URL:     "/index.html",
			Version: model.HTTP11,
			Header:  model.Header{{Name: "Host", Value: "example.org"}},
		},
		expectErr:  nil,
		expectData: "GET /index.html HTTP/1.1\nHost: example.org\n\n",
	}, {
		name:    "POST with body, query, duplicate headers and HTTP/1.0",
		encoder: &Encoder{},
		request: &model.Request{
			Method:  "POST",
			URL:     "https://example.org/api?x=1&y=2",
			Version: model.HTTP10,
			Header: model.Header{
				{Name: "Host", Value: "example.org"},
				{Name: "x-dup", Value: "a"},
				{Name: "X-Dup", Value: "b"},
				{Name: "Content-Length", Value: "5"},
			},
			Body: []byte("hello"),
		},
		expectErr:  nil,
		expectData: "POST /api?x=1&y=2 HTTP/1.0\nHost: example.org\nx-dup: a\nX-Dup: b\nContent-Length: 5\n\nhello",
	}, {
		name:    "query without path",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https://example.org?q=tor",
		},
		expectErr:  nil,
		expectData: "GET /?q=tor HTTP/1.1\n\n",
	}, {
		name:    "CRLF line terminator",
		encoder: &Encoder{LineTerminator: CRLF},
		request: &model.Request{
			Method: "GET",
			URL:    "https://example.org/",
			Header: model.Header{{Name: "Host", Value: "example.org"}},
		},
		expectErr:  nil,
		expectData: "GET / HTTP/1.1\r\nHost: example.org\r\n\r\n",
	}, {
		name:    "header values are written verbatim",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https://example.org/",
			Header: model.Header{{Name: "x-Weird Name", Value: "  spaced\tvalue  "}},
		},
		expectErr:  nil,
		expectData: "GET / HTTP/1.1\nx-Weird Name:   spaced\tvalue  \n\n",
	}, {
		name:    "absolute URL with empty path",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https://www.c4dt.org",
			Header: model.Header{{Name: "Host", Value: "www.c4dt.org"}},
		},
		expectErr:  nil,
		expectData: "GET / HTTP/1.1\nHost: www.c4dt.org\n\n",
	}, {
		name:    "authority form without path and query",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "example.org:443",
		},
		expectErr:  ErrNoPathAndQuery,
		expectData: "",
	}, {
		name:    "scheme only URL",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https:",
		},
		expectErr:  ErrNoPathAndQuery,
		expectData: "",
	}, {
		name:    "unparseable URL",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "\t",
		},
		expectErr:  ErrNoPathAndQuery,
		expectData: "",
	}, {
		name:    "opaque URL",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "mailto:someone@example.org",
		},
		expectErr:  ErrNoPathAndQuery,
		expectData: "",
	}, {
		name:    "empty method",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "",
			URL:    "https://example.org/",
		},
		expectErr:  ErrInvalidMethod,
		expectData: "",
	}, {
		name:    "unsupported version",
		encoder: &Encoder{},
		request: &model.Request{
			Method:  "GET",
			URL:     "https://example.org/",
			Version: model.Version(7),
		},
		expectErr:  ErrInvalidVersion,
		expectData: "",
	}, {
		name:    "empty header name",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https://example.org/",
			Header: model.Header{{Name: "", Value: "x"}},
		},
		expectErr:  ErrMissingHeaderName,
		expectData: "",
	}, {
		name:    "header value with newline",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https://example.org/",
			Header: model.Header{{Name: "X-Inject", Value: "a\nb"}},
		},
		expectErr:  ErrInvalidHeaderValue,
		expectData: "",
	}, {
		name:    "header value that is not UTF-8",
		encoder: &Encoder{},
		request: &model.Request{
			Method: "GET",
			URL:    "https://example.org/",
			Header: model.Header{{Name: "X-Bin", Value: "\xff\xfe"}},
		},
		expectErr:  ErrInvalidHeaderValue,
		expectData: "",
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.encoder.Encode(tc.request)

			if !errors.Is(err, tc.expectErr) {
				t.Fatal("expected", tc.expectErr, "got", err)
			}
			if err != nil && !errors.Is(err, ErrEncoding) {
				t.Fatal("expected error to wrap ErrEncoding", err)
			}
			if diff := cmp.Diff(tc.expectData, string(data)); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestEncodeRequestUsesLF(t *testing.T) {
	req := model.NewRequest("GET", "http://example.org/index.html")
	req.Header.Add("Host", "example.org")
	data, err := EncodeRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "GET /index.html HTTP/1.1\nHost: example.org\n\n" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestRequestTarget(t *testing.T) {
	expect := map[string]string{
		"https://example.org/":            "/",
		"https://example.org/a%20b":       "/a%20b",
		"https://example.org/search?":     "/search?",
		"https://example.org/x?y=z#frag":  "/x?y=z",
		"http://user:pw@example.org:81/p": "/p",
	}
	for input, output := range expect {
		t.Run(input, func(t *testing.T) {
			target, err := RequestTarget(input)
			if err != nil {
				t.Fatal(err)
			}
			if target != output {
				t.Fatal("expected", output, "got", target)
			}
		})
	}
}
