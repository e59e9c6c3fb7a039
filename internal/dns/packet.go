package dns

import (
	"fmt"

	"github.com/jroosing/rigo/internal/helpers"
)

// Limits on incoming DNS messages to prevent resource exhaustion from
// hostile headers that declare huge section counts.
const (
	MaxQuestions    = 4   // Questions per message (in practice always 1)
	MaxRRPerSection = 100 // Resource records per section
)

// Packet represents a complete DNS message (RFC 1035 Section 4.1).
//
// DNS messages are composed of five sections:
//   - Header: Transaction ID, flags, section counts
//   - Questions: What is being asked
//   - Answers: Resource records answering the question
//   - Authorities: Name servers authoritative for the domain
//   - Additionals: Extra records for optimization (e.g., A records for NS)
//
// A Packet is a value constructed fresh per query or response; it owns all
// of its substructures and shares nothing with other packets.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// Marshal serializes the packet to DNS wire format (big-endian). Section
// counts are derived from the section slices, never taken from the caller,
// so the count-integrity invariant holds by construction.
func (p Packet) Marshal() ([]byte, error) {
	h := Header{
		ID:      p.Header.ID,
		Flags:   p.Header.Flags,
		QDCount: helpers.ClampIntToUint16(len(p.Questions)),
		ANCount: helpers.ClampIntToUint16(len(p.Answers)),
		NSCount: helpers.ClampIntToUint16(len(p.Authorities)),
		ARCount: helpers.ClampIntToUint16(len(p.Additionals)),
	}

	// Estimate capacity: header(12) + question(~50) + records(~100 each)
	estimatedSize := HeaderSize + len(p.Questions)*50 +
		(len(p.Answers)+len(p.Authorities)+len(p.Additionals))*100
	out := make([]byte, 0, estimatedSize)
	out = append(out, h.Marshal()...)

	for _, q := range p.Questions {
		qb, err := q.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, qb...)
	}

	if err := appendRecords(&out, p.Answers); err != nil {
		return nil, err
	}
	if err := appendRecords(&out, p.Authorities); err != nil {
		return nil, err
	}
	if err := appendRecords(&out, p.Additionals); err != nil {
		return nil, err
	}

	return out, nil
}

// appendRecords marshals and appends records to the output buffer.
func appendRecords(out *[]byte, records []Record) error {
	for _, r := range records {
		b, err := MarshalRecord(r)
		if err != nil {
			return err
		}
		*out = append(*out, b...)
	}
	return nil
}

// ParsePacket decodes a complete DNS message. The header's section counts
// dictate how many entries are read from each section; a buffer that runs
// out before a declared count is satisfied fails with ErrMalformedResponse,
// so decoding is all-or-nothing per message.
func ParsePacket(msg []byte) (Packet, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Packet{}, err
	}
	if err := checkSectionCounts(h); err != nil {
		return Packet{}, err
	}

	p := Packet{Header: h}

	p.Questions = make([]Question, 0, h.QDCount)
	for i := uint16(0); i < h.QDCount; i++ {
		q, err := ParseQuestion(msg, &off)
		if err != nil {
			return Packet{}, err
		}
		p.Questions = append(p.Questions, q)
	}
	if p.Answers, err = parseRecordSection(msg, &off, h.ANCount); err != nil {
		return Packet{}, err
	}
	if p.Authorities, err = parseRecordSection(msg, &off, h.NSCount); err != nil {
		return Packet{}, err
	}
	if p.Additionals, err = parseRecordSection(msg, &off, h.ARCount); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// parseRecordSection reads exactly count records starting at *off.
func parseRecordSection(msg []byte, off *int, count uint16) ([]Record, error) {
	if count == 0 {
		return nil, nil
	}
	records := make([]Record, 0, count)
	for i := uint16(0); i < count; i++ {
		r, err := ParseRecord(msg, off)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// checkSectionCounts rejects headers whose declared counts exceed the
// sanity limits before any allocation is sized from them.
func checkSectionCounts(h Header) error {
	if int(h.QDCount) > MaxQuestions {
		return fmt.Errorf("%w: too many questions (%d)", ErrMalformedResponse, h.QDCount)
	}
	for _, c := range [...]uint16{h.ANCount, h.NSCount, h.ARCount} {
		if int(c) > MaxRRPerSection {
			return fmt.Errorf("%w: too many resource records (%d)", ErrMalformedResponse, c)
		}
	}
	return nil
}
