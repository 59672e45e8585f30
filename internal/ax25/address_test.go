package ax25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeDecodeAddressRoundTrip(t *testing.T) {
	call := MustParseCallsign("N0CAL-5")
	addr := EncodeAddress(call, true, true)
	got, cOrH, isLast := DecodeAddress(addr)
	assert.Equal(t, call, got)
	assert.True(t, cOrH)
	assert.True(t, isLast)
}

func TestEncodeAddressPadsShortCallsign(t *testing.T) {
	call := MustParseCallsign("W1AW")
	addr := EncodeAddress(call, false, false)
	// The first 6 bytes, shifted back right, should be "W1AW  " (padded with spaces).
	var raw [6]byte
	for i := 0; i < 6; i++ {
		raw[i] = addr[i] >> 1 & 0x7F
	}
	assert.Equal(t, "W1AW  ", string(raw[:]))
}

func TestDecodeAddressRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.StringMatching(`[A-Z0-9]{1,6}`).Draw(t, "base")
		ssid := rapid.IntRange(0, 15).Draw(t, "ssid")
		call := Callsign{Base: base, SSID: ssid}

		isLast := rapid.Bool().Draw(t, "isLast")
		cOrH := rapid.Bool().Draw(t, "cOrH")

		addr := EncodeAddress(call, isLast, cOrH)
		got, gotCOrH, gotLast := DecodeAddress(addr)

		if got != call {
			t.Fatalf("round trip mismatch: want %+v got %+v", call, got)
		}
		if gotCOrH != cOrH || gotLast != isLast {
			t.Fatalf("bit round trip mismatch: want cOrH=%v last=%v got cOrH=%v last=%v", cOrH, isLast, gotCOrH, gotLast)
		}
	})
}

func TestBuildParseAddressFieldRoundTrip(t *testing.T) {
	dest := MustParseCallsign("N0CALL")
	src := MustParseCallsign("W1AW-1")
	digis := []Callsign{MustParseCallsign("WIDE1-1"), MustParseCallsign("WIDE2-2")}

	b := BuildAddressField(dest, src, digis, true)
	af, offset, err := ParseAddressField(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), offset)
	assert.Equal(t, dest, af.Dest)
	assert.Equal(t, src, af.Src)
	require.Len(t, af.Digis, 2)
	assert.Equal(t, digis[0], af.Digis[0].Call)
	assert.Equal(t, digis[1], af.Digis[1].Call)
	assert.False(t, af.Digis[0].Repeated)
}

func TestBuildAddressFieldNoDigisLastBitOnSource(t *testing.T) {
	dest := MustParseCallsign("DEST")
	src := MustParseCallsign("SRC")
	b := BuildAddressField(dest, src, nil, true)
	assert.Len(t, b, 14)
	assert.EqualValues(t, 1, b[13]&0x01, "source address must carry the last-address bit when there are no digipeaters")
	assert.EqualValues(t, 0, b[6]&0x01, "destination address must not carry the last-address bit")
}

func TestParseAddressFieldTooShort(t *testing.T) {
	_, _, err := ParseAddressField(make([]byte, 10))
	assert.Error(t, err)
}

func TestParseAddressFieldTruncatedDigi(t *testing.T) {
	dest := MustParseCallsign("DEST")
	src := MustParseCallsign("SRC")
	b := BuildAddressField(dest, src, []Callsign{MustParseCallsign("DIGI")}, true)
	_, _, err := ParseAddressField(b[:len(b)-3])
	assert.Error(t, err)
}

func TestParseCallsignInvalid(t *testing.T) {
	_, err := ParseCallsign("")
	assert.Error(t, err)
	_, err = ParseCallsign("TOOLONGCALL")
	assert.Error(t, err)
	_, err = ParseCallsign("N0CALL-16")
	assert.Error(t, err)
	_, err = ParseCallsign("N0-CAL-1")
	assert.Error(t, err)
}

func TestCallsignString(t *testing.T) {
	assert.Equal(t, "N0CALL", MustParseCallsign("N0CALL-0").String())
	assert.Equal(t, "N0CALL-5", MustParseCallsign("n0call-5").String())
}
