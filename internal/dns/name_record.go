package dns

import "fmt"

// NameRecord represents DNS records whose RDATA is a single domain name
// (CNAME, NS, PTR, and the RFC 1035 mail experimental types).
type NameRecord struct {
	H      RRHeader
	T      RecordType
	Target string
}

// NewNameRecord creates a new name-based record.
func NewNameRecord(h RRHeader, rt RecordType, target string) *NameRecord {
	return &NameRecord{H: h, T: rt, Target: target}
}

// NewCNAMERecord creates a new CNAME record.
func NewCNAMERecord(h RRHeader, target string) *NameRecord {
	return NewNameRecord(h, TypeCNAME, target)
}

// Type returns the record type.
func (r *NameRecord) Type() RecordType { return r.T }

// Header returns the record header.
func (r *NameRecord) Header() RRHeader { return r.H }

// SetHeader sets the record header.
func (r *NameRecord) SetHeader(h RRHeader) { r.H = h }

// MarshalRData marshals the target name to wire format.
func (r *NameRecord) MarshalRData() ([]byte, error) {
	return EncodeName(r.Target)
}

// ParseNameRData parses name-bearing record RDATA from wire format. The
// target name may use compression pointers into the surrounding message;
// the bytes consumed must match the declared RDATA length exactly.
func ParseNameRData(msg []byte, off *int, start, rdlen int, rt RecordType) (*NameRecord, error) {
	n, err := DecodeName(msg, off)
	if err != nil {
		return nil, err
	}
	if *off-start != rdlen {
		return nil, fmt.Errorf("%w: %s record rdata length mismatch (declared %d, consumed %d)",
			ErrMalformedResponse, rt, rdlen, *off-start)
	}
	return &NameRecord{Target: n, T: rt}, nil
}
