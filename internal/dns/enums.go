package dns

import (
	"fmt"
	"strconv"
	"strings"
)

// DNS header flags and masks (RFC 1035 Section 4.1.1)
//
// The DNS header contains a 16-bit flags field with the following layout:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
const (
	QRFlag     uint16 = 0x8000 // Query/Response: 1 = response, 0 = query
	OpcodeMask uint16 = 0x7800 // Bits 14-11: operation type (use >> 11 to extract)
	AAFlag     uint16 = 0x0400 // Authoritative Answer
	TCFlag     uint16 = 0x0200 // Truncation: message was truncated
	RDFlag     uint16 = 0x0100 // Recursion Desired
	RAFlag     uint16 = 0x0080 // Recursion Available
	ZFlag      uint16 = 0x0040 // Reserved (must be zero in queries)
	ADFlag     uint16 = 0x0020 // Authenticated Data
	CDFlag     uint16 = 0x0010 // Checking Disabled
	RCodeMask  uint16 = 0x000F // Bits 3-0: response code
)

// RecordType represents DNS resource record TYPE codes (RFC 1035 Section
// 3.2.2, RFC 3596). Unknown codes are carried through as raw values and
// rendered as TYPE<n>.
type RecordType uint16

const (
	TypeA     RecordType = 1  // IPv4 host address
	TypeNS    RecordType = 2  // Authoritative name server
	TypeMD    RecordType = 3  // Mail destination (obsolete, use MX)
	TypeMF    RecordType = 4  // Mail forwarder (obsolete, use MX)
	TypeCNAME RecordType = 5  // Canonical name (alias)
	TypeSOA   RecordType = 6  // Start of a zone of authority
	TypeMB    RecordType = 7  // Mailbox domain name (experimental)
	TypeMG    RecordType = 8  // Mail group member (experimental)
	TypeMR    RecordType = 9  // Mail rename domain name (experimental)
	TypeNULL  RecordType = 10 // Null RR (experimental)
	TypeWKS   RecordType = 11 // Well known service description
	TypePTR   RecordType = 12 // Domain name pointer (reverse DNS)
	TypeHINFO RecordType = 13 // Host information
	TypeMINFO RecordType = 14 // Mailbox or mail list information
	TypeMX    RecordType = 15 // Mail exchange
	TypeTXT   RecordType = 16 // Text strings
	TypeAAAA  RecordType = 28 // IPv6 host address (RFC 3596)
)

var recordTypeNames = map[RecordType]string{
	TypeA:     "A",
	TypeNS:    "NS",
	TypeMD:    "MD",
	TypeMF:    "MF",
	TypeCNAME: "CNAME",
	TypeSOA:   "SOA",
	TypeMB:    "MB",
	TypeMG:    "MG",
	TypeMR:    "MR",
	TypeNULL:  "NULL",
	TypeWKS:   "WKS",
	TypePTR:   "PTR",
	TypeHINFO: "HINFO",
	TypeMINFO: "MINFO",
	TypeMX:    "MX",
	TypeTXT:   "TXT",
	TypeAAAA:  "AAAA",
}

// String returns the mnemonic for known types and TYPE<n> otherwise
// (the RFC 3597 convention for unknown types).
func (t RecordType) String() string {
	if s, ok := recordTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// ParseRecordType converts a type mnemonic ("A", "AAAA", ...) or a bare
// numeric code to a RecordType.
func ParseRecordType(s string) (RecordType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range recordTypeNames {
		if name == upper {
			return t, nil
		}
	}
	if n, err := strconv.ParseUint(upper, 10, 16); err == nil {
		return RecordType(n), nil
	}
	return 0, fmt.Errorf("unknown record type %q", s)
}

// RecordClass represents DNS resource record CLASS codes (RFC 1035 Section
// 3.2.4). Almost all traffic is ClassIN.
type RecordClass uint16

const (
	ClassIN RecordClass = 1 // Internet
	ClassCS RecordClass = 2 // CSNET (obsolete)
	ClassCH RecordClass = 3 // CHAOS
	ClassHS RecordClass = 4 // Hesiod
)

// String returns the mnemonic for known classes and CLASS<n> otherwise.
func (c RecordClass) String() string {
	switch c {
	case ClassIN:
		return "IN"
	case ClassCS:
		return "CS"
	case ClassCH:
		return "CH"
	case ClassHS:
		return "HS"
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

// RCode represents DNS response codes (RFC 1035 Section 4.1.1).
type RCode uint16

const (
	RCodeNoError  RCode = 0 // No error
	RCodeFormErr  RCode = 1 // Format error: query malformed
	RCodeServFail RCode = 2 // Server failure: internal error
	RCodeNXDomain RCode = 3 // Non-existent domain
	RCodeNotImp   RCode = 4 // Not implemented: unsupported query type
	RCodeRefused  RCode = 5 // Query refused by policy
)

// String returns the conventional rcode mnemonic.
func (r RCode) String() string {
	switch r {
	case RCodeNoError:
		return "NOERROR"
	case RCodeFormErr:
		return "FORMERR"
	case RCodeServFail:
		return "SERVFAIL"
	case RCodeNXDomain:
		return "NXDOMAIN"
	case RCodeNotImp:
		return "NOTIMP"
	case RCodeRefused:
		return "REFUSED"
	}
	return fmt.Sprintf("RCODE%d", uint16(r))
}

// RCodeFromFlags extracts the response code from the DNS header flags.
// The RCODE occupies the low 4 bits of the flags field.
func RCodeFromFlags(flags uint16) RCode {
	return RCode(flags & RCodeMask)
}
