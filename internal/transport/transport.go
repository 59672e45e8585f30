// Package transport maintains the byte-stream connection to a
// host-side KISS TNC. Two concrete transports are provided: TCP (the
// only one spec.md requires) and a serial-port alternative, following
// the "if the port does not start with a digit, treat it as a serial
// device" convention from the direwolf family's kissutil.
package transport

import (
	"errors"
	"io"
	"time"
)

// ErrClosed is returned by Recv after Close has been called.
var ErrClosed = errors.New("transport: closed")

// recvTimeout bounds each blocking read so the owning receive loop can
// periodically observe a shutdown flag (spec.md §4.4, §5).
const recvTimeout = 200 * time.Millisecond

// dialTimeout bounds the initial TCP connect (spec.md §4.4).
const dialTimeout = 5 * time.Second

// Conn is the minimal surface a transport needs to expose: a
// deadline-aware stream plus Close. net.Conn satisfies this directly;
// *serial.Port is adapted to it by serialConn (serial.go).
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Transport wraps a Conn and exposes a receive loop driven by Recv. It
// does not serialize writes itself; internal/link.Engine sends every
// frame under its single mutex, so KISS frames are never interleaved on
// the wire (spec.md §4.4).
type Transport struct {
	conn   Conn
	closed chan struct{}
}

func newTransport(conn Conn) *Transport {
	return &Transport{conn: conn, closed: make(chan struct{})}
}

// New wraps an already-established Conn (e.g. a net.Pipe() end in
// tests) as a Transport. DialTCP and DialSerial are the production
// constructors; this is the seam test harnesses use instead of a real
// socket or serial port.
func New(conn Conn) *Transport {
	return newTransport(conn)
}

// Send writes one complete frame atomically. Callers are responsible
// for external serialization (internal/link.Engine holds a single
// mutex around all sends).
func (t *Transport) Send(frame []byte) error {
	_, err := t.conn.Write(frame)
	return err
}

// Recv blocks for up to recvTimeout waiting for bytes. It returns
// (nil, nil, true) on a read timeout (not an error) so the caller's
// loop can check its shutdown flag; err is non-nil on genuine
// transport loss (EOF or a socket error).
func (t *Transport) Recv() (chunk []byte, err error, timedOut bool) {
	select {
	case <-t.closed:
		return nil, ErrClosed, false
	default:
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(recvTimeout)); err != nil {
		return nil, err, false
	}
	buf := make([]byte, 4096)
	n, err := t.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return nil, nil, true
		}
		return nil, err, false
	}
	return buf[:n], nil, false
}

// Close shuts the transport down by closing the Conn. A Recv already
// blocked in a read returns whatever the closed Conn's Read reports;
// every Recv call made after Close returns ErrClosed.
func (t *Transport) Close() error {
	select {
	case <-t.closed:
		return nil
	default:
		close(t.closed)
	}
	return t.conn.Close()
}

type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}
