package ax25

import "fmt"

const addressLen = 7

// Digipeater is one entry of a digipeater path, carrying the
// "has-been-repeated" (H) bit. The H bit is informational only; this
// package never infers forwarding behavior from it (spec: digipeater
// H-bits are not interpreted on receive).
type Digipeater struct {
	Call     Callsign
	Repeated bool
}

// AddressField is the destination/source/digipeater sequence of an
// AX.25 frame.
type AddressField struct {
	Dest  Callsign
	Src   Callsign
	Digis []Digipeater
}

// EncodeAddress packs call into the 7-byte AX.25 address format: each
// of the first 6 bytes is the uppercased, space-padded base character
// shifted left by one bit; the 7th byte carries the SSID in bits 4-1,
// bit 6 always set (reserved), bit 7 the C/H bit, and bit 0 the
// last-address marker.
func EncodeAddress(call Callsign, isLast, cOrH bool) [addressLen]byte {
	var out [addressLen]byte
	base := call.Base
	for len(base) < 6 {
		base += " "
	}
	for i := 0; i < 6; i++ {
		out[i] = byte(base[i]) << 1 & 0xFE
	}
	b := byte(0x60) | byte(call.SSID&0x0F)<<1
	if cOrH {
		b |= 0x80
	}
	if isLast {
		b |= 0x01
	}
	out[6] = b
	return out
}

// DecodeAddress reverses EncodeAddress, returning the callsign and
// whether the C/H bit and last-address bit were set.
func DecodeAddress(addr [addressLen]byte) (call Callsign, cOrH bool, isLast bool) {
	var sb [6]byte
	for i := 0; i < 6; i++ {
		sb[i] = addr[i] >> 1 & 0x7F
	}
	base := trimTrailingSpace(string(sb[:]))
	ssid := int(addr[6]>>1) & 0x0F
	cOrH = addr[6]&0x80 != 0
	isLast = addr[6]&0x01 != 0
	return Callsign{Base: base, SSID: ssid}, cOrH, isLast
}

func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == ' ' {
		end--
	}
	return s[:end]
}

// BuildAddressField encodes dest, src and an optional digipeater path
// into the wire address field. cmd selects command orientation: the
// destination's C-bit is set to cmd and the source's to !cmd (AX.25's
// "opposite C-bit" convention for commands vs responses). Digipeaters
// are emitted with H=false (this repo only originates frames with a
// digipeater list; it never performs digipeat forwarding).
func BuildAddressField(dest, src Callsign, digis []Callsign, cmd bool) []byte {
	out := make([]byte, 0, addressLen*(2+len(digis)))
	destAddr := EncodeAddress(dest, false, cmd)
	out = append(out, destAddr[:]...)
	srcAddr := EncodeAddress(src, len(digis) == 0, !cmd)
	out = append(out, srcAddr[:]...)
	for i, d := range digis {
		last := i == len(digis)-1
		digiAddr := EncodeAddress(d, last, false)
		out = append(out, digiAddr[:]...)
	}
	return out
}

// ParseAddressField scans forward in 7-byte strides starting at b[0]
// until it consumes an address with the last-address bit set. It
// returns the decoded fields and the offset of the first byte after
// the address field (where the control octet begins).
func ParseAddressField(b []byte) (AddressField, int, error) {
	if len(b) < 2*addressLen {
		return AddressField{}, 0, fmt.Errorf("ax25: address field needs at least %d bytes, got %d", 2*addressLen, len(b))
	}
	var destBuf, srcBuf [addressLen]byte
	copy(destBuf[:], b[0:addressLen])
	copy(srcBuf[:], b[addressLen:2*addressLen])
	dest, _, _ := DecodeAddress(destBuf)
	src, _, srcLast := DecodeAddress(srcBuf)

	af := AddressField{Dest: dest, Src: src}
	offset := 2 * addressLen
	if srcLast {
		return af, offset, nil
	}
	for {
		if offset+addressLen > len(b) {
			return AddressField{}, 0, fmt.Errorf("ax25: digipeater address field truncated")
		}
		var digiBuf [addressLen]byte
		copy(digiBuf[:], b[offset:offset+addressLen])
		call, repeated, last := DecodeAddress(digiBuf)
		af.Digis = append(af.Digis, Digipeater{Call: call, Repeated: repeated})
		offset += addressLen
		if last {
			return af, offset, nil
		}
	}
}

// DigiCallsigns strips the H bit bookkeeping, returning the plain
// digipeater path in order.
func (af AddressField) DigiCallsigns() []Callsign {
	if len(af.Digis) == 0 {
		return nil
	}
	out := make([]Callsign, len(af.Digis))
	for i, d := range af.Digis {
		out[i] = d.Call
	}
	return out
}
