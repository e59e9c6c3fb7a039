package dns

import (
	"encoding/binary"
	"fmt"

	"github.com/jroosing/rigo/internal/helpers"
)

// RRHeader contains the common metadata of a DNS resource record.
// This is distinct from Header, which is the DNS message header.
type RRHeader struct {
	Name  string
	Class RecordClass
	TTL   uint32
}

// Record is the interface for DNS resource records.
//
// The concrete implementations form a closed set: IPRecord (A/AAAA),
// NameRecord (types whose RDATA is a single domain name), and OpaqueRecord
// (everything else, kept as raw bytes). Display and decode sites switch
// exhaustively over these three.
type Record interface {
	// Type returns the DNS record type.
	Type() RecordType

	// Header returns the record's metadata.
	Header() RRHeader

	// SetHeader sets the record's metadata.
	SetHeader(h RRHeader)

	// MarshalRData marshals the record-specific data (RDATA) to wire format.
	MarshalRData() ([]byte, error)
}

// ParseRecord parses a resource record from wire format.
// It advances *off past the parsed record on success.
func ParseRecord(msg []byte, off *int) (Record, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return nil, err
	}
	if *off+10 > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF while reading record", ErrMalformedResponse)
	}
	rrType := RecordType(binary.BigEndian.Uint16(msg[*off : *off+2]))
	rrClass := RecordClass(binary.BigEndian.Uint16(msg[*off+2 : *off+4]))
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := binary.BigEndian.Uint16(msg[*off+8 : *off+10])
	*off += 10
	start := *off
	if start+int(rdlen) > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF while reading record rdata", ErrMalformedResponse)
	}

	r, err := parseRData(rrType, msg, off, start, int(rdlen))
	if err != nil {
		return nil, err
	}
	r.SetHeader(RRHeader{Name: name, Class: rrClass, TTL: ttl})

	return r, nil
}

// parseRData dispatches RDATA decoding on the record type:
//   - A/AAAA carry exactly a 4/16-byte address
//   - name-bearing types (CNAME, NS, PTR, and the RFC 1035 mail types)
//     re-enter the name decoder at the record's data offset, subject to the
//     same compression pointer protection
//   - everything else is captured opaquely at the declared length, enabling
//     forward-compatible display without a full per-type parser
func parseRData(rt RecordType, msg []byte, off *int, start, rdlen int) (Record, error) {
	switch rt {
	case TypeA, TypeAAAA:
		return ParseIPRData(rt, msg, off, rdlen)
	case TypeCNAME, TypeNS, TypePTR, TypeMD, TypeMF, TypeMB, TypeMG, TypeMR:
		return ParseNameRData(msg, off, start, rdlen, rt)
	default:
		return ParseOpaqueRData(msg, off, rdlen, rt)
	}
}

// MarshalRecord converts a Record to wire-format bytes.
func MarshalRecord(r Record) ([]byte, error) {
	rdata, err := r.MarshalRData()
	if err != nil {
		return nil, err
	}
	h := r.Header()

	nameWire, err := EncodeName(h.Name)
	if err != nil {
		return nil, err
	}

	if len(rdata) > 65535 {
		return nil, fmt.Errorf("rdata too large: %d bytes (max 65535)", len(rdata))
	}
	out := make([]byte, 0, len(nameWire)+10+len(rdata))
	out = append(out, nameWire...)
	fixed := make([]byte, 10)
	binary.BigEndian.PutUint16(fixed[0:2], uint16(r.Type()))
	binary.BigEndian.PutUint16(fixed[2:4], uint16(h.Class))
	binary.BigEndian.PutUint32(fixed[4:8], h.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], helpers.ClampIntToUint16(len(rdata)))
	out = append(out, fixed...)
	out = append(out, rdata...)
	return out, nil
}
