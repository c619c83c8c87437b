package response

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"minihttp/internal/headers"
)

type StatusCode int

const (
	OK                    StatusCode = 200
	NO_CONTENT            StatusCode = 204
	BAD_REQUEST           StatusCode = 400
	NOT_FOUND             StatusCode = 404
	METHOD_NOT_ALLOWED    StatusCode = 405
	INTERNAL_SERVER_ERROR StatusCode = 500
)

var StatusCodeName = map[StatusCode]string{
	OK:                    "OK",
	NO_CONTENT:            "No Content",
	BAD_REQUEST:           "Bad Request",
	NOT_FOUND:             "Not Found",
	METHOD_NOT_ALLOWED:    "Method Not Allowed",
	INTERNAL_SERVER_ERROR: "Internal Server Error",
}

const (
	httpVersion = "HTTP/1.1"

	// DefaultServer is sent in the Server header.
	DefaultServer = "minihttp/0.1"

	ContentTypeHTML  = "text/html; charset=utf-8"
	ContentTypePlain = "text/plain"
)

// Response is a complete response before serialization. The body is always
// sent in full with an exact Content-Length.
type Response struct {
	StatusCode  StatusCode
	Reason      string
	ContentType string
	Body        []byte
}

// New fills in the reason phrase from StatusCodeName.
func New(code StatusCode, contentType string, body []byte) Response {
	return Response{
		StatusCode:  code,
		Reason:      ReasonPhrase(code),
		ContentType: contentType,
		Body:        body,
	}
}

// HTML is New with ContentTypeHTML.
func HTML(code StatusCode, body string) Response {
	return New(code, ContentTypeHTML, []byte(body))
}

// BadRequest is sent whenever the request line can't be framed or parsed.
func BadRequest() Response {
	return HTML(BAD_REQUEST, "<h1>400 Bad Request</h1>")
}

func InternalServerError() Response {
	return HTML(INTERNAL_SERVER_ERROR, "<h1>500 Internal Server Error</h1>")
}

func ReasonPhrase(code StatusCode) string {
	reason, ok := StatusCodeName[code]
	if !ok {
		return "Unknown"
	}
	return reason
}

// ErrInvalidHeader is reported when a response carries a value that can't be
// put on the wire as is. The response is still sent, with the offending value
// replaced by its default.
var ErrInvalidHeader = errors.New("invalid response header")

// GetDefaultHeaders returns the fixed header set every response carries, in
// wire order. A field whose value is rejected is left out and reported.
func GetDefaultHeaders(contentType string, contentLen int, server string) (headers.Headers, error) {
	h := headers.NewHeaders()
	fields := [...]headers.Field{
		{Name: "Content-Type", Value: contentType},
		{Name: "Content-Length", Value: strconv.Itoa(contentLen)},
		{Name: "Connection", Value: "close"},
		{Name: "Server", Value: server},
	}

	var errs []error
	for _, f := range fields {
		if err := h.Set(f.Name, f.Value); err != nil {
			errs = append(errs, fmt.Errorf("%w %s %q: %w", ErrInvalidHeader, f.Name, f.Value, err))
		}
	}

	return h, errors.Join(errs...)
}

// Headers returns the header set for r. Content-Length counts body bytes.
// It always holds all four fields: an unusable content type or server name is
// swapped for ContentTypePlain or DefaultServer and the error says which.
func (r Response) Headers(server string) (headers.Headers, error) {
	contentType := r.ContentType
	if contentType == "" {
		contentType = ContentTypePlain
	}
	if server == "" {
		server = DefaultServer
	}

	h, err := GetDefaultHeaders(contentType, len(r.Body), server)
	if err == nil {
		return h, nil
	}

	if !headers.ValidValue(contentType) {
		contentType = ContentTypePlain
	}
	if !headers.ValidValue(server) {
		server = DefaultServer
	}
	h, _ = GetDefaultHeaders(contentType, len(r.Body), server)
	return h, err
}

// AppendTo serializes r into dst: status line, headers, blank line, body.
// The bytes are a complete response even when err is non-nil.
func (r Response) AppendTo(dst []byte, server string) ([]byte, error) {
	reason := r.Reason
	if reason == "" || !headers.ValidValue(reason) {
		reason = ReasonPhrase(r.StatusCode)
	}

	h, err := r.Headers(server)

	dst = append(dst, httpVersion...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(r.StatusCode), 10)
	dst = append(dst, ' ')
	dst = append(dst, reason...)
	dst = append(dst, '\r', '\n')
	dst = h.AppendTo(dst)
	dst = append(dst, '\r', '\n')
	return append(dst, r.Body...), err
}

type Writer struct {
	writer io.Writer
	Server string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{writer: w, Server: DefaultServer}
}

// WriteResponse sends the whole response with a single Write call. An
// ErrInvalidHeader is returned only after the response went out.
func (w *Writer) WriteResponse(r Response) (int, error) {
	buf, herr := r.AppendTo(make([]byte, 0, 160+len(r.Body)), w.Server)
	n, err := w.writer.Write(buf)
	if err != nil {
		return n, err
	}

	return n, herr
}
