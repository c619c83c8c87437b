package request

import (
	"bytes"
	"errors"
	"io"
)

// Request is what the responder knows about an incoming request: the framed
// header block and its parsed first line. Header lines after the first are
// kept raw and never interpreted.
type Request struct {
	RequestLine *RequestLine
	Header      []byte
}

// RequestLine represents the three components of an HTTP/1.1 request line:
//
//	<method> <request-target> <HTTP-version>
type RequestLine struct {
	Method        string
	RequestTarget string
	HTTPVersion   string
}

var (
	ErrMalformedRequestLine = errors.New("malformed request-line")
	ErrIncompleteHeader     = errors.New("header block not terminated")

	// HTTP/1.1 requires CRLF as line terminator.
	separator = []byte("\r\n")
)

// FromReader frames a header block from r and parses its request line.
// The returned errors are ErrIncompleteHeader, ErrMalformedRequestLine, or
// an ErrRead wrapper.
func FromReader(r io.Reader, limit int) (*Request, error) {
	frame, err := ReadFrame(r, limit)
	if err != nil {
		return nil, err
	}
	if !frame.Complete {
		return nil, ErrIncompleteHeader
	}

	rl, err := ParseRequestLine(frame.Header)
	if err != nil {
		return nil, err
	}

	return &Request{RequestLine: rl, Header: frame.Header}, nil
}

// ParseRequestLine parses the line before the first CRLF in header. The
// tokens are copied, so header may be reused afterwards.
func ParseRequestLine(header []byte) (*RequestLine, error) {
	idx := bytes.Index(header, separator)
	if idx == -1 {
		return nil, ErrMalformedRequestLine
	}

	// Split on spaces/tabs into tokens
	tokens := bytes.Fields(header[:idx])
	if len(tokens) != 3 {
		return nil, ErrMalformedRequestLine
	}

	return &RequestLine{
		Method:        string(tokens[0]),
		RequestTarget: string(tokens[1]),
		HTTPVersion:   string(tokens[2]),
	}, nil
}
