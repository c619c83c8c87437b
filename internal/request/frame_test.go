package request

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader hands out data in fixed-size pieces, like a socket that
// delivers a request over several segments.
type chunkReader struct {
	data      []byte
	chunkSize int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}

	n := min(c.chunkSize, len(p), len(c.data))
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

// interruptedReader fails with EINTR a few times before delegating.
type interruptedReader struct {
	r          io.Reader
	interrupts int
}

func (i *interruptedReader) Read(p []byte) (int, error) {
	if i.interrupts > 0 {
		i.interrupts--
		return 0, syscall.EINTR
	}

	return i.r.Read(p)
}

const helloRequest = "GET /hello HTTP/1.1\r\nHost: localhost:8080\r\nUser-Agent: curl/8.0\r\n\r\n"

func TestReadFrame(t *testing.T) {
	// Test: Complete header in a single read
	frame, err := ReadFrame(strings.NewReader(helloRequest), 0)
	require.NoError(t, err)
	assert.True(t, frame.Complete)
	assert.Equal(t, helloRequest, string(frame.Header))
	assert.Empty(t, frame.Rest)

	// Test: Bytes after the terminator are split off
	frame, err = ReadFrame(strings.NewReader("POST / HTTP/1.1\r\n\r\nbody=1"), 0)
	require.NoError(t, err)
	require.True(t, frame.Complete)
	assert.Equal(t, "POST / HTTP/1.1\r\n\r\n", string(frame.Header))
	assert.Equal(t, "body=1", string(frame.Rest))

	// Test: Peer closes before the terminator
	frame, err = ReadFrame(strings.NewReader("GET / HTTP/1.1\r\nHost: x\r\n"), 0)
	require.NoError(t, err)
	assert.False(t, frame.Complete)
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: x\r\n", string(frame.Header))

	// Test: Empty stream
	frame, err = ReadFrame(strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.False(t, frame.Complete)
	assert.Empty(t, frame.Header)
}

func TestReadFrameAcrossReads(t *testing.T) {
	want, err := ReadFrame(strings.NewReader(helloRequest), 0)
	require.NoError(t, err)

	// One byte at a time
	got, err := ReadFrame(iotest.OneByteReader(strings.NewReader(helloRequest)), 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Every chunk size, so the terminator is split at every possible offset
	for size := 1; size <= len(helloRequest); size++ {
		r := &chunkReader{data: []byte(helloRequest), chunkSize: size}
		got, err := ReadFrame(r, 0)
		require.NoError(t, err, "chunk size %d", size)
		assert.Equal(t, want.Header, got.Header, "chunk size %d", size)
		assert.True(t, got.Complete, "chunk size %d", size)
	}

	// Data arriving together with io.EOF is still considered
	got, err = ReadFrame(iotest.DataErrReader(strings.NewReader(helloRequest)), 0)
	require.NoError(t, err)
	assert.True(t, got.Complete)
}

func TestReadFrameLimit(t *testing.T) {
	// Never terminated, longer than the cap: stops exactly at the cap
	endless := io.MultiReader(
		strings.NewReader("GET / HTTP/1.1\r\n"),
		&chunkReader{data: bytes.Repeat([]byte("X"), 64*1024), chunkSize: 4096},
	)
	frame, err := ReadFrame(endless, 512)
	require.NoError(t, err)
	assert.False(t, frame.Complete)
	assert.Len(t, frame.Header, 512)

	// The default cap applies when limit is not positive
	frame, err = ReadFrame(bytes.NewReader(bytes.Repeat([]byte("A"), 3*DefaultMaxRequestSize)), -1)
	require.NoError(t, err)
	assert.False(t, frame.Complete)
	assert.Len(t, frame.Header, DefaultMaxRequestSize)

	// A terminator landing exactly on the cap still counts
	req := "GET / HTTP/1.1\r\n\r\n"
	frame, err = ReadFrame(iotest.OneByteReader(strings.NewReader(req+"trailing")), len(req))
	require.NoError(t, err)
	assert.True(t, frame.Complete)
	assert.Equal(t, req, string(frame.Header))

	// One byte short of the terminator is incomplete
	frame, err = ReadFrame(strings.NewReader(req), len(req)-1)
	require.NoError(t, err)
	assert.False(t, frame.Complete)
}

func TestReadFrameErrors(t *testing.T) {
	// Test: EINTR is retried transparently
	r := &interruptedReader{r: iotest.HalfReader(strings.NewReader(helloRequest)), interrupts: 3}
	frame, err := ReadFrame(r, 0)
	require.NoError(t, err)
	assert.True(t, frame.Complete)

	// Test: Any other read error is fatal
	boom := errors.New("connection reset by peer")
	frame, err = ReadFrame(io.MultiReader(
		strings.NewReader("GET / HT"),
		iotest.ErrReader(boom),
	), 0)
	require.ErrorIs(t, err, ErrRead)
	require.ErrorIs(t, err, boom)
	assert.False(t, frame.Complete)
	assert.Equal(t, "GET / HT", string(frame.Header))

	// Test: Timeout surfaces as a read error, not as an incomplete frame
	_, err = ReadFrame(iotest.TimeoutReader(iotest.OneByteReader(strings.NewReader("GET"))), 0)
	require.ErrorIs(t, err, iotest.ErrTimeout)
}
