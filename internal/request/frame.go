package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"syscall"
)

// DefaultMaxRequestSize caps how many bytes are buffered while looking for the
// end of the header block.
const DefaultMaxRequestSize = 8 * 1024

// readChunk is the most bytes requested from the stream per Read call.
const readChunk = 1024

var (
	// ErrRead wraps a non-transient read failure. The connection is unusable.
	ErrRead = errors.New("read request")

	headerTerminator = []byte("\r\n\r\n")
)

// Frame is the raw header block captured from a connection.
type Frame struct {
	// Header runs from the first byte up to and including CRLFCRLF. When
	// Complete is false it holds everything that was read.
	Header []byte
	// Rest is whatever arrived after the terminator in the same reads.
	Rest     []byte
	Complete bool
}

// ReadFrame reads from r until the header terminator shows up, limit bytes are
// buffered, or r reports io.EOF. The last two cases return an incomplete
// frame and a nil error; any other read error is wrapped in ErrRead.
func ReadFrame(r io.Reader, limit int) (Frame, error) {
	if limit <= 0 {
		limit = DefaultMaxRequestSize
	}

	buf := make([]byte, 0, min(limit, 2*readChunk))
	// searched is where the previous terminator search stopped, minus the
	// bytes a terminator split across reads could start in.
	searched := 0

	for len(buf) < limit {
		if cap(buf)-len(buf) < readChunk && cap(buf) < limit {
			grown := make([]byte, len(buf), min(limit, 2*cap(buf)))
			copy(grown, buf)
			buf = grown
		}

		want := min(readChunk, limit-len(buf), cap(buf)-len(buf))
		n, err := r.Read(buf[len(buf) : len(buf)+want])
		if n > 0 {
			buf = buf[:len(buf)+n]

			if idx := bytes.Index(buf[searched:], headerTerminator); idx != -1 {
				end := searched + idx + len(headerTerminator)
				return Frame{
					Header:   buf[:end:end],
					Rest:     buf[end:],
					Complete: true,
				}, nil
			}

			searched = max(0, len(buf)-len(headerTerminator)+1)
		}

		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return Frame{Header: buf}, nil
			case errors.Is(err, syscall.EINTR):
				continue
			default:
				return Frame{Header: buf}, fmt.Errorf("%w: %w", ErrRead, err)
			}
		}
	}

	return Frame{Header: buf}, nil
}

