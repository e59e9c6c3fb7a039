package dns

import (
	"fmt"
	"strings"
)

// Name length limits from RFC 1035 Section 2.3.4.
const (
	maxLabelLength = 63  // Per-label limit, excluding the length byte
	maxNameLength  = 255 // Whole encoded name, including length bytes and root
)

// maxPointerHops bounds how many compression pointers a single name may
// chase. Legitimate messages need a handful at most; the cap turns crafted
// pointer chains into a decode error instead of unbounded work.
const maxPointerHops = 32

// NormalizeName returns a lowercase DNS name without trailing dots.
// DNS domain names are case-insensitive per RFC 1035 Section 3.1, so this
// is the canonical form for name comparisons.
func NormalizeName(name string) string {
	return strings.ToLower(trimDot(name))
}

// EncodeName encodes a domain name to DNS wire format (RFC 1035 Section 3.1).
//
// DNS names are encoded as a sequence of labels, each preceded by a length
// byte, terminated by a zero-length label (root).
//
// Example: "example.com" → [7]"example"[3]"com"[0]
//
// Constraints, all reported as ErrInvalidName before any bytes are written:
//   - Each label 1-63 bytes
//   - Total encoded name max 255 bytes
//   - ASCII only (no IDN/punycode handled here)
//
// Outgoing queries carry a single question and never need compression, so
// EncodeName always spells the name out in full.
func EncodeName(domain string) ([]byte, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: name must be non-empty", ErrInvalidName)
	}
	domain = trimDot(domain)
	if domain == "" {
		return []byte{0}, nil // Root domain
	}

	out := make([]byte, 0, len(domain)+2)
	labelStart := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			if i == labelStart {
				return nil, fmt.Errorf("%w: empty label in %q", ErrInvalidName, domain)
			}
			label := domain[labelStart:i]

			for j := 0; j < len(label); j++ {
				if label[j] > 0x7F {
					return nil, fmt.Errorf("%w: name must be ASCII", ErrInvalidName)
				}
			}

			if len(label) > maxLabelLength {
				return nil, fmt.Errorf("%w: label too long (%d > %d): %q",
					ErrInvalidName, len(label), maxLabelLength, label)
			}

			out = append(out, byte(len(label)))
			out = append(out, label...)
			labelStart = i + 1
		}
	}
	out = append(out, 0) // Terminating zero-length label

	if len(out) > maxNameLength {
		return nil, fmt.Errorf("%w: encoded name too long (%d > %d)",
			ErrInvalidName, len(out), maxNameLength)
	}
	return out, nil
}

// DecodeName decodes a possibly-compressed DNS name from wire format.
//
// DNS name compression (RFC 1035 Section 4.1.4) replaces a name suffix with
// a pointer to an identical suffix earlier in the message. A pointer is a
// label length byte with both high bits set (11xxxxxx); its low 6 bits plus
// the following byte form a 14-bit offset from the start of the message:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	| 1  1|                OFFSET                   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// Well-formed pointers always refer backwards, so each hop's target must be
// strictly lower than the previous one (the first must precede the pointer
// itself). A pointer that points forward, at itself, or chases more than
// maxPointerHops hops fails with ErrMalformedResponse. The monotonicity
// check makes loop detection a simple offset comparison with no bookkeeping.
//
// DecodeName reads from msg starting at *off, advancing *off past the
// encoded name (including any compression pointer bytes). Positions reached
// by following a pointer never move *off.
//
// Returns an ASCII, dot-separated name without a trailing dot.
func DecodeName(msg []byte, off *int) (string, error) {
	if *off < 0 || *off >= len(msg) {
		return "", fmt.Errorf("%w: name offset out of bounds", ErrMalformedResponse)
	}

	// Pre-allocate for typical domain depth (e.g., www.example.com = 3 labels)
	labels := make([]string, 0, 6)
	pos := *off
	floor := len(msg) // every pointer target must land strictly below this
	hops := 0
	jumped := false

	for {
		if pos >= len(msg) {
			return "", fmt.Errorf("%w: unexpected EOF while decoding name", ErrMalformedResponse)
		}
		labelLen := msg[pos]
		pos++

		// Zero-length label marks end of name
		if labelLen == 0 {
			if !jumped {
				*off = pos
			}
			return joinLabels(labels), nil
		}

		// Compression pointer (high 2 bits = 11)
		if isCompressionPointer(labelLen) {
			if pos >= len(msg) {
				return "", fmt.Errorf("%w: unexpected EOF in compression pointer", ErrMalformedResponse)
			}
			target := int(labelLen&0x3F)<<8 | int(msg[pos])
			pos++
			if !jumped {
				*off = pos
				// The first pointer must refer before its own location.
				floor = pos - 2
				jumped = true
			}
			if target >= floor {
				return "", fmt.Errorf("%w: compression pointer does not point backwards (offset %d)",
					ErrMalformedResponse, target)
			}
			hops++
			if hops > maxPointerHops {
				return "", fmt.Errorf("%w: too many compression pointer hops", ErrMalformedResponse)
			}
			floor = target
			pos = target
			continue
		}

		// Reserved label types (high 2 bits = 01 or 10) per RFC 1035
		if hasReservedBits(labelLen) {
			return "", fmt.Errorf("%w: reserved label length bits set", ErrMalformedResponse)
		}

		label, err := readLabel(msg, &pos, int(labelLen))
		if err != nil {
			return "", err
		}
		labels = append(labels, label)
	}
}

// isCompressionPointer checks if the label length byte indicates a
// compression pointer (11xxxxxx = 0xC0 mask).
func isCompressionPointer(b byte) bool {
	return (b & 0xC0) == 0xC0
}

// hasReservedBits checks if the label uses reserved encoding (01xxxxxx or
// 10xxxxxx). These patterns are reserved for future use per RFC 1035.
func hasReservedBits(b byte) bool {
	return (b & 0xC0) != 0
}

// readLabel reads a single DNS label of the given length.
func readLabel(msg []byte, pos *int, length int) (string, error) {
	if *pos+length > len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while reading label", ErrMalformedResponse)
	}
	label := msg[*pos : *pos+length]
	*pos += length

	for _, b := range label {
		if b > 0x7F {
			return "", fmt.Errorf("%w: decoded name was not ASCII", ErrMalformedResponse)
		}
	}
	return string(label), nil
}

// trimDot removes all trailing dots from a string.
func trimDot(s string) string {
	for len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// joinLabels concatenates DNS labels with dots.
func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	if len(labels) == 1 {
		return labels[0]
	}
	totalSize := len(labels) - 1 // dots
	for _, label := range labels {
		totalSize += len(label)
	}
	var b strings.Builder
	b.Grow(totalSize)
	b.WriteString(labels[0])
	for i := 1; i < len(labels); i++ {
		b.WriteByte('.')
		b.WriteString(labels[i])
	}
	return b.String()
}
