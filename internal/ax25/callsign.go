// Package ax25 implements AX.25 address encoding and link-layer frame
// construction/parsing (modulo-8 LAPB plus UI), ported from the address
// and frame-field layout documented in ax25_pad.c of the direwolf
// family of TNC implementations.
package ax25

import (
	"fmt"
	"strconv"
	"strings"
)

// Callsign is a base callsign (1-6 uppercase letters/digits) plus an
// SSID in [0,15].
type Callsign struct {
	Base string
	SSID int
}

// ParseCallsign accepts "BASE" or "BASE-SSID" and uppercases the base.
func ParseCallsign(s string) (Callsign, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Callsign{}, fmt.Errorf("ax25: empty callsign")
	}
	base, ssidStr, hasSSID := strings.Cut(s, "-")
	base = strings.ToUpper(base)
	if len(base) == 0 || len(base) > 6 {
		return Callsign{}, fmt.Errorf("ax25: callsign base %q must be 1-6 characters", base)
	}
	for _, r := range base {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return Callsign{}, fmt.Errorf("ax25: callsign base %q has invalid character %q", base, r)
		}
	}
	ssid := 0
	if hasSSID {
		v, err := strconv.Atoi(ssidStr)
		if err != nil {
			return Callsign{}, fmt.Errorf("ax25: invalid SSID %q: %w", ssidStr, err)
		}
		ssid = v
	}
	if ssid < 0 || ssid > 15 {
		return Callsign{}, fmt.Errorf("ax25: SSID %d out of range [0,15]", ssid)
	}
	return Callsign{Base: base, SSID: ssid}, nil
}

// MustParseCallsign is ParseCallsign but panics on error; useful for
// constants in tests and examples.
func MustParseCallsign(s string) Callsign {
	c, err := ParseCallsign(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Callsign) String() string {
	if c.SSID == 0 {
		return c.Base
	}
	return fmt.Sprintf("%s-%d", c.Base, c.SSID)
}

// Equal compares base and SSID, ignoring any H/C bit bookkeeping.
func (c Callsign) Equal(o Callsign) bool {
	return c.Base == o.Base && c.SSID == o.SSID
}
