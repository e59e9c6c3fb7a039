// Package dns implements the DNS wire format (RFC 1035): message model,
// encoding, and decoding with name-compression support.
//
// Standards Compliance:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core protocol)
//   - RFC 1034: Domain Names - Concepts and Facilities
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//
// Type-Oriented Design:
//
// Each RDATA shape is represented by an explicit type (IPRecord, NameRecord,
// OpaqueRecord) behind the Record interface rather than a generic struct.
// New record types are added by extending the dispatch in parseRData, not by
// open-ended subclassing.
//
// Error Handling:
//
// All errors wrap one of the two sentinels below with context using
// fmt.Errorf("...: %w", err), so callers can classify failures with
// errors.Is while keeping the error chain.
package dns

import "errors"

var (
	// ErrInvalidName reports an outgoing domain name that violates the
	// RFC 1035 label/length limits. It is raised before any bytes are
	// written or sent.
	ErrInvalidName = errors.New("invalid domain name")

	// ErrMalformedResponse reports a wire message that cannot be decoded:
	// truncated sections, count mismatches, or compression pointer abuse.
	// Decoding is all-or-nothing; a message that raises this error must be
	// discarded entirely.
	ErrMalformedResponse = errors.New("malformed dns message")
)
