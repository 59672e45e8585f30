package transport

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// serialConn adapts *serial.Port (whose timeout model is a persistent
// per-read duration rather than an absolute deadline) to the Conn
// interface.
type serialConn struct {
	port *serial.Port
}

func (s serialConn) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s serialConn) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s serialConn) Close() error                { return s.port.Close() }

func (s serialConn) SetReadDeadline(t time.Time) error {
	d := time.Until(t)
	if d < 0 {
		d = 0
	}
	s.port.SetReadTimeout(d)
	return nil
}

// DialSerial opens a serial-attached KISS TNC at the given device path
// and baud rate, matching the "-p /dev/ttyAM0 -s 9600" form of the
// direwolf family's kissutil. The port is switched to raw mode before
// use, since KISS traffic is unframed binary.
func DialSerial(device string, baud int) (*Transport, error) {
	port, err := serial.Open(device, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: open serial %s: %w", device, err)
	}
	if err := port.MakeRaw(); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: set raw mode on %s: %w", device, err)
	}
	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: read attrs on %s: %w", device, err)
	}
	attrs.MakeRaw()
	attrs.SetCustomSpeed(uint32(baud))
	if err := port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: set speed %d on %s: %w", baud, device, err)
	}
	return newTransport(serialConn{port: port}), nil
}
