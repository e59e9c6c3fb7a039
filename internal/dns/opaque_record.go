package dns

// OpaqueRecord represents a DNS record of a type this package has no
// dedicated decoder for. The RDATA is kept as raw bytes so unknown types
// survive a decode/encode round trip and can still be displayed.
type OpaqueRecord struct {
	H    RRHeader
	T    RecordType
	Data []byte
}

// NewOpaqueRecord creates a new opaque record.
func NewOpaqueRecord(h RRHeader, rt RecordType, data []byte) *OpaqueRecord {
	return &OpaqueRecord{H: h, T: rt, Data: data}
}

// Type returns the record type.
func (r *OpaqueRecord) Type() RecordType { return r.T }

// Header returns the record header.
func (r *OpaqueRecord) Header() RRHeader { return r.H }

// SetHeader sets the record header.
func (r *OpaqueRecord) SetHeader(h RRHeader) { r.H = h }

// MarshalRData returns the raw RDATA bytes unchanged.
func (r *OpaqueRecord) MarshalRData() ([]byte, error) {
	return r.Data, nil
}

// ParseOpaqueRData captures rdlen bytes of raw RDATA. Bounds were already
// checked by ParseRecord against the declared length.
func ParseOpaqueRData(msg []byte, off *int, rdlen int, rt RecordType) (*OpaqueRecord, error) {
	b := make([]byte, rdlen)
	copy(b, msg[*off:*off+rdlen])
	*off += rdlen
	return &OpaqueRecord{T: rt, Data: b}, nil
}
