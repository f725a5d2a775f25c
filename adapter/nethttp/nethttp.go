// Package nethttp adapts *http.Request and http.Header to the
// signature engine's adapter.Message contract, buffering the request body
// so it can compute a digest and still hand an intact body to the next
// handler.
package nethttp

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/hgmich/node-http-sig/adapter"
)

// RequestMessage wraps an *http.Request. Header names are matched
// case-insensitively via http.Header's own canonicalization, with a
// special case for "host" which net/http stores on Request.Host rather
// than in the header map.
type RequestMessage struct {
	req *http.Request
}

// NewRequestMessage wraps req. The caller is responsible for restoring
// req.Body (see BufferBody) before the request is sent or forwarded.
func NewRequestMessage(req *http.Request) *RequestMessage {
	return &RequestMessage{req: req}
}

// BufferBody reads and replaces req.Body with a rewindable copy, returning
// the buffered bytes for digest computation. Calling it more than once is
// safe: the second call re-reads the buffer put back by the first.
func BufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(req.Body); err != nil {
		return nil, err
	}
	req.Body.Close()

	body := buf.Bytes()
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func (m *RequestMessage) Header(name string) ([]string, bool) {
	if strings.EqualFold(name, "host") {
		host := m.req.Host
		if host == "" {
			host = m.req.Header.Get("Host")
		}
		if host == "" {
			return nil, false
		}
		return []string{host}, true
	}

	values, ok := m.req.Header[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return nil, false
	}
	return values, true
}

func (m *RequestMessage) SetHeader(name, value string) {
	m.req.Header.Set(name, value)
}

func (m *RequestMessage) RequestTarget() (adapter.RequestTarget, bool) {
	path := m.req.URL.Path
	if m.req.URL.RawQuery != "" {
		path += "?" + m.req.URL.RawQuery
	}
	return adapter.RequestTarget{Method: m.req.Method, Path: path}, true
}

var _ adapter.MutableMessage = (*RequestMessage)(nil)

// ResponseMessage wraps an http.Header for response signing/verification.
// Responses carry no request-target.
type ResponseMessage struct {
	header http.Header
}

// NewResponseMessage wraps header, typically an http.ResponseWriter's own
// Header() map or a client response's Header.
func NewResponseMessage(header http.Header) *ResponseMessage {
	return &ResponseMessage{header: header}
}

func (m *ResponseMessage) Header(name string) ([]string, bool) {
	values, ok := m.header[http.CanonicalHeaderKey(name)]
	if !ok || len(values) == 0 {
		return nil, false
	}
	return values, true
}

func (m *ResponseMessage) SetHeader(name, value string) {
	m.header.Set(name, value)
}

func (m *ResponseMessage) RequestTarget() (adapter.RequestTarget, bool) {
	return adapter.RequestTarget{}, false
}

var _ adapter.MutableMessage = (*ResponseMessage)(nil)
