package dns

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketMarshal_StandardAQuery(t *testing.T) {
	p := Packet{
		Header: Header{ID: 1337, Flags: RDFlag | ADFlag},
		Questions: []Question{
			{Name: "google.com", Type: TypeA, Class: ClassIN},
		},
	}
	b, err := p.Marshal()
	require.NoError(t, err)

	exp := []byte{
		5, 57, 1, 32, 0, 1, 0, 0, 0, 0, 0, 0,
		6, 'g', 'o', 'o', 'g', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0, 1, 0, 1,
	}
	assert.Equal(t, exp, b)
}

func TestPacketMarshal_DerivesCounts(t *testing.T) {
	// Header counts are ignored in favor of the actual section lengths.
	p := Packet{
		Header: Header{ID: 1, QDCount: 9, ANCount: 9},
		Questions: []Question{
			{Name: "example.com", Type: TypeA, Class: ClassIN},
		},
	}
	b, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(b[4:6]), "qdcount")
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(b[6:8]), "ancount")
}

func TestPacketRoundTrip(t *testing.T) {
	p := Packet{
		Header: Header{ID: 0x5678, Flags: QRFlag | RDFlag | RAFlag},
		Questions: []Question{
			{Name: "example.com", Type: TypeA, Class: ClassIN},
		},
		Answers: []Record{
			NewIPRecord(RRHeader{Name: "example.com", Class: ClassIN, TTL: 300}, net.IPv4(93, 184, 216, 34)),
			NewCNAMERecord(RRHeader{Name: "www.example.com", Class: ClassIN, TTL: 3600}, "example.com"),
		},
		Authorities: []Record{
			NewNameRecord(RRHeader{Name: "example.com", Class: ClassIN, TTL: 86400}, TypeNS, "ns1.example.com"),
		},
		Additionals: []Record{
			NewIPRecord(RRHeader{Name: "ns1.example.com", Class: ClassIN, TTL: 86400}, net.ParseIP("2001:db8::1")),
		},
	}
	b, err := p.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePacket(b)
	require.NoError(t, err)

	assert.Equal(t, p.Header.ID, parsed.Header.ID)
	assert.Equal(t, p.Header.Flags, parsed.Header.Flags)
	assert.Equal(t, p.Questions, parsed.Questions)
	require.Len(t, parsed.Answers, 2)
	require.Len(t, parsed.Authorities, 1)
	require.Len(t, parsed.Additionals, 1)

	a0 := parsed.Answers[0].(*IPRecord)
	assert.Equal(t, "93.184.216.34", a0.Addr.String())
	assert.Equal(t, uint32(300), a0.Header().TTL)

	a1 := parsed.Answers[1].(*NameRecord)
	assert.Equal(t, "example.com", a1.Target)

	ns := parsed.Authorities[0].(*NameRecord)
	assert.Equal(t, TypeNS, ns.Type())
	assert.Equal(t, "ns1.example.com", ns.Target)

	ad := parsed.Additionals[0].(*IPRecord)
	assert.Equal(t, TypeAAAA, ad.Type())
}

func TestParsePacket_CompressedAnswerName(t *testing.T) {
	// Answer name is a pointer to the question name at offset 12 (0xC00C):
	// the decoded answer name must equal the decoded question name.
	msg := []byte{
		0xAB, 0xCD, // id
		0x81, 0x80, // response, RD|RA
		0, 1, 0, 1, 0, 0, 0, 0, // counts
		6, 'g', 'i', 't', 'h', 'u', 'b', 3, 'c', 'o', 'm', 0, // question name @12
		0, 1, 0, 1, // A IN
		0xC0, 0x0C, // answer name -> offset 12
		0, 1, 0, 1, // A IN
		0, 0, 0, 60, // ttl
		0, 4, // rdlength
		140, 82, 112, 3, // rdata
	}

	p, err := ParsePacket(msg)
	require.NoError(t, err)
	require.Len(t, p.Questions, 1)
	require.Len(t, p.Answers, 1)

	assert.Equal(t, "github.com", p.Questions[0].Name)
	assert.Equal(t, p.Questions[0].Name, p.Answers[0].Header().Name)

	a := p.Answers[0].(*IPRecord)
	assert.Equal(t, "140.82.112.3", a.Addr.String())
}

func TestParsePacket_CountExceedsRecordsFails(t *testing.T) {
	p := Packet{
		Header: Header{ID: 7, Flags: QRFlag},
		Questions: []Question{
			{Name: "example.com", Type: TypeA, Class: ClassIN},
		},
		Answers: []Record{
			NewIPRecord(RRHeader{Name: "example.com", Class: ClassIN, TTL: 60}, net.IPv4(1, 2, 3, 4)),
		},
	}
	b, err := p.Marshal()
	require.NoError(t, err)

	// Declare ancount=2 while only one answer record is present.
	binary.BigEndian.PutUint16(b[6:8], 2)

	_, err = ParsePacket(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParsePacket_ExcessiveCountsFail(t *testing.T) {
	b := Header{ID: 1, Flags: QRFlag, ANCount: uint16(MaxRRPerSection + 1)}.Marshal()
	_, err := ParsePacket(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParsePacket_TruncatedHeaderFails(t *testing.T) {
	_, err := ParsePacket([]byte{0, 1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParsePacket_EmptyMessage(t *testing.T) {
	p, err := ParsePacket(Header{ID: 42}.Marshal())
	require.NoError(t, err)
	assert.Equal(t, uint16(42), p.Header.ID)
	assert.Empty(t, p.Questions)
	assert.Empty(t, p.Answers)
}
