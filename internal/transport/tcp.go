package transport

import (
	"fmt"
	"net"
)

// DialTCP opens a TCP connection to a KISS host TNC with a 5-second
// connect timeout (spec.md §4.4). The connection's read deadline is
// managed per-call by Transport.Recv.
func DialTCP(addr string) (*Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return newTransport(conn), nil
}
