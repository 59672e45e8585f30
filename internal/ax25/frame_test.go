package ax25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mycall = MustParseCallsign("N0CALL-0")
	peer   = MustParseCallsign("W1AW-0")
)

func TestControlOctetConstants(t *testing.T) {
	// Spec.md §6 pins these exact values.
	assert.EqualValues(t, 0x2F, CtrlSABM)
	assert.EqualValues(t, 0x6F, CtrlSABME)
	assert.EqualValues(t, 0x63, CtrlUA)
	assert.EqualValues(t, 0x43, CtrlDISC)
	assert.EqualValues(t, 0x0F, CtrlDM)
	assert.EqualValues(t, 0x87, CtrlFRMR)
	assert.EqualValues(t, 0x03, CtrlUI)
	assert.EqualValues(t, 0xF0, PIDNoLayer3)
}

func TestBuildParseSABME(t *testing.T) {
	raw := BuildUFrame(peer, mycall, nil, USABME, true, true)
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, KindU, f.Kind)
	assert.Equal(t, USABME, f.UKind)
	assert.True(t, f.PF)
	assert.True(t, f.Command)
	assert.Equal(t, peer, f.Addresses.Dest)
	assert.Equal(t, mycall, f.Addresses.Src)
}

func TestBuildParseUAIsResponseOrientation(t *testing.T) {
	raw := BuildUFrame(mycall, peer, nil, UUA, false, true)
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.False(t, f.Command, "a UA response must clear the destination C-bit")
}

func TestBuildParseIFrame(t *testing.T) {
	raw := BuildIFrame(peer, mycall, nil, 3, 5, true, []byte("hi\r"))
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, KindI, f.Kind)
	assert.Equal(t, 3, f.Ns)
	assert.Equal(t, 5, f.Nr)
	assert.True(t, f.PF)
	assert.Equal(t, PIDNoLayer3, f.PID)
	assert.Equal(t, []byte("hi\r"), f.Info)
}

func TestIFrameNsWrapsModulo8(t *testing.T) {
	raw := BuildIFrame(peer, mycall, nil, 7, 0, false, nil)
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, f.Ns)

	// One more step should land back at 0, mod 8.
	next := (f.Ns + 1) & 7
	assert.Equal(t, 0, next)
}

func TestBuildParseUIFrame(t *testing.T) {
	raw := BuildUIFrame(MustParseCallsign("CQ"), MustParseCallsign("K0XYZ"), nil, []byte("test"))
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, KindU, f.Kind)
	assert.Equal(t, UUI, f.UKind)
	assert.Equal(t, []byte("test"), f.Info)
	assert.Equal(t, PIDNoLayer3, f.PID)
}

func TestBuildParseSFrameRRPoll(t *testing.T) {
	raw := BuildSFrame(peer, mycall, nil, SRR, 0, true, true)
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, KindS, f.Kind)
	assert.Equal(t, SRR, f.SKind)
	assert.Equal(t, 0, f.Nr)
	assert.True(t, f.PF)
	assert.True(t, f.Command)
}

func TestBuildWithDigipath(t *testing.T) {
	digis := []Callsign{MustParseCallsign("WIDE1-1"), MustParseCallsign("WIDE2-2")}
	raw := BuildUIFrame(MustParseCallsign("APRS"), mycall, digis, []byte("!test"))
	f, err := ParseFrame(raw)
	require.NoError(t, err)
	require.Len(t, f.Addresses.Digis, 2)
	assert.Equal(t, digis, f.Addresses.DigiCallsigns())
}

func TestParseFrameRejectsTruncatedAddressField(t *testing.T) {
	_, err := ParseFrame(make([]byte, 5))
	assert.Error(t, err)
}

func TestParseFrameRejectsMissingControlOctet(t *testing.T) {
	raw := BuildAddressField(peer, mycall, nil, true)
	_, err := ParseFrame(raw) // no control octet appended
	assert.Error(t, err)
}
