package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMarshal_StandardQuery(t *testing.T) {
	h := Header{ID: 1337, Flags: RDFlag | ADFlag, QDCount: 1}
	b := h.Marshal()
	// id=1337 (0x0539), flags=0x0120 (RD|AD), qdcount=1
	exp := []byte{5, 57, 1, 32, 0, 1, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, exp, b)
}

func TestHeaderMarshal_NoFlags(t *testing.T) {
	h := Header{ID: 1337, QDCount: 1}
	b := h.Marshal()
	exp := []byte{5, 57, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, exp, b)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		ID:      0xBEEF,
		Flags:   QRFlag | RDFlag | RAFlag,
		QDCount: 1,
		ANCount: 3,
		NSCount: 2,
		ARCount: 1,
	}
	off := 0
	parsed, err := ParseHeader(h.Marshal(), &off)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Equal(t, HeaderSize, off)
}

func TestParseHeader_Truncated(t *testing.T) {
	off := 0
	_, err := ParseHeader(make([]byte, HeaderSize-1), &off)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestHeaderFlagAccessors(t *testing.T) {
	h := Header{Flags: QRFlag | AAFlag | TCFlag | RDFlag | RAFlag | uint16(RCodeNXDomain)}
	assert.True(t, h.IsResponse())
	assert.False(t, h.IsQuery())
	assert.True(t, h.Authoritative())
	assert.True(t, h.Truncated())
	assert.True(t, h.RecursionDesired())
	assert.True(t, h.RecursionAvailable())
	assert.Equal(t, RCodeNXDomain, h.RCode())
	assert.Equal(t, uint16(0), h.Opcode())

	q := Header{Flags: RDFlag}
	assert.True(t, q.IsQuery())
	assert.False(t, q.Truncated())
	assert.Equal(t, RCodeNoError, q.RCode())
}

func TestHeaderOpcode(t *testing.T) {
	h := Header{Flags: 0x0800} // opcode 1 (IQUERY)
	assert.Equal(t, uint16(1), h.Opcode())
}
