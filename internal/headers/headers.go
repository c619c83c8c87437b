package headers

import (
	"errors"
	"strings"
)

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered header set. Names are unique case-insensitively, so
// serializing it never produces duplicate or folded lines.
type Headers []Field

var (
	ErrMalformedHeaderName  = errors.New("malformed header name")
	ErrMalformedHeaderValue = errors.New("malformed header value")
)

func NewHeaders() Headers { return make(Headers, 0, 4) }

// Get is case-insensitive.
func (h Headers) Get(name string) string {
	if i := h.index(name); i >= 0 {
		return h[i].Value
	}

	return ""
}

// Set replaces the value of an existing header in place, keeping its position,
// or appends a new one.
func (h *Headers) Set(name, value string) error {
	if !isToken(name) {
		return ErrMalformedHeaderName
	}
	if !ValidValue(value) {
		return ErrMalformedHeaderValue
	}

	if i := h.index(name); i >= 0 {
		(*h)[i].Value = value
		return nil
	}

	*h = append(*h, Field{Name: name, Value: value})
	return nil
}

// ValidValue reports whether v can be sent as a header value without
// splitting or folding the header block.
func ValidValue(v string) bool {
	return !strings.ContainsAny(v, "\r\n")
}

// AppendTo writes every field as "Name: Value\r\n" into dst. The terminating
// blank line is not included.
func (h Headers) AppendTo(dst []byte) []byte {
	for _, f := range h {
		dst = append(dst, f.Name...)
		dst = append(dst, ':', ' ')
		dst = append(dst, f.Value...)
		dst = append(dst, '\r', '\n')
	}

	return dst
}

func (h Headers) index(name string) int {
	for i, f := range h {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}

	return -1
}

var allowed [256]bool

func init() {
	for c := byte('0'); c <= '9'; c++ {
		allowed[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		allowed[c] = true
	}
	for c := byte('a'); c <= 'z'; c++ {
		allowed[c] = true
	}
	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		allowed[c] = true
	}
}

func isToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !allowed[s[i]] {
			return false
		}
	}
	return true
}
