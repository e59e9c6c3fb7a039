// Package resolver drives DNS lookups end to end: it builds query packets,
// exchanges them over the transport, validates the decoded responses, and
// extracts structured answer records per hostname.
package resolver

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jroosing/rigo/internal/dns"
	"github.com/jroosing/rigo/internal/transport"
)

// DefaultServer is queried when no resolver address is configured.
const DefaultServer = "1.1.1.1:53"

// RecordView is one extracted answer in display-ready form: the owner name,
// TTL, class and type mnemonics, and the type-dependent data (dotted-quad
// for A, RFC 5952 text for AAAA, target name for name-bearing types, hex
// for everything else).
type RecordView struct {
	Name  string
	TTL   uint32
	Class string
	Type  string
	Data  string
}

// Outcome is the per-hostname result of a batch resolution.
//
// Exactly one of these shapes holds:
//   - Err != nil: the lookup failed (timeout, socket error, malformed or
//     mismatched response). Records is empty.
//   - Err == nil, RCode != RCodeNoError: the server answered with a
//     DNS-level failure such as NXDOMAIN. Records is empty; this is an
//     empty-but-successful lookup, not an engine failure.
//   - Err == nil, RCode == RCodeNoError: Records holds the answers in the
//     order received (possibly none).
type Outcome struct {
	Hostname  string
	Records   []RecordView
	RCode     dns.RCode
	Truncated bool
	Err       error
}

// Resolver performs best-effort batch DNS lookups, one independent UDP
// conversation per hostname. Configuration is read-only once Resolve runs.
type Resolver struct {
	Server     string             // Resolver address as host:port
	RecordType dns.RecordType     // Query type; zero value means TypeA
	Client     *transport.Client  // Exchange transport
	NextID     func() uint16      // Transaction id source; must not repeat across outstanding queries
	Logger     *slog.Logger       // Optional; nil disables logging
	Stats      *BatchStats        // Optional batch counters
}

// New creates a Resolver with the given server address and query type,
// using the default transport and a crypto/rand transaction id source.
func New(server string, rt dns.RecordType, timeout time.Duration, retries int) *Resolver {
	if server == "" {
		server = DefaultServer
	}
	if rt == 0 {
		rt = dns.TypeA
	}
	return &Resolver{
		Server:     server,
		RecordType: rt,
		Client:     &transport.Client{Timeout: timeout, Retries: retries},
		NextID:     RandomID,
		Stats:      NewBatchStats(),
	}
}

// RandomID returns an unpredictable 16-bit transaction id. Predictable ids
// would make response spoofing trivial, so this reads from crypto/rand.
func RandomID() uint16 {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is unrecoverable process state
		panic(fmt.Sprintf("resolver: reading random id: %v", err))
	}
	return binary.BigEndian.Uint16(b[:])
}

// Resolve looks up every hostname concurrently and returns one Outcome per
// hostname, in input order. A failure for one hostname never aborts the
// others; the contract is best-effort per item. Cancelling ctx surfaces as
// a timeout for every still-pending hostname, all-or-nothing per item.
func (r *Resolver) Resolve(ctx context.Context, hostnames []string) []Outcome {
	outcomes := make([]Outcome, len(hostnames))

	var wg sync.WaitGroup
	for i, host := range hostnames {
		i, host := i, host
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = r.resolveOne(ctx, host)
		}()
	}
	wg.Wait()

	return outcomes
}

// resolveOne runs a single query/response round trip for one hostname.
func (r *Resolver) resolveOne(ctx context.Context, hostname string) Outcome {
	out := Outcome{Hostname: hostname}
	start := time.Now()

	txid := r.nextID()
	query, err := r.buildQuery(txid, hostname)
	if err != nil {
		out.Err = err
		r.Stats.RecordFailure()
		return out
	}

	respBytes, err := r.client().Exchange(ctx, r.Server, txid, query)
	if err != nil {
		out.Err = err
		r.Stats.RecordExchangeError(err)
		return out
	}

	resp, err := dns.ParsePacket(respBytes)
	if err != nil {
		out.Err = err
		r.Stats.RecordFailure()
		return out
	}

	if err := validateResponse(txid, hostname, r.RecordType, resp); err != nil {
		out.Err = err
		r.Stats.RecordFailure()
		return out
	}

	out.Truncated = resp.Header.Truncated()
	if out.Truncated && r.Logger != nil {
		// Answer set may be incomplete; retrying over TCP is a deliberate
		// non-feature, see the transport docs.
		r.Logger.Warn("response truncated, answers may be incomplete",
			"hostname", hostname, "server", r.Server)
	}

	out.RCode = resp.Header.RCode()
	if out.RCode != dns.RCodeNoError {
		// DNS-level failure: an empty result, not an engine error.
		r.Stats.RecordRCode(out.RCode)
		return out
	}

	out.Records = extractRecords(resp.Answers)
	r.Stats.RecordSuccess(time.Since(start))
	return out
}

// buildQuery encodes a standard recursive query for hostname with a single
// question. The name is validated against the RFC 1035 limits before any
// bytes go out; violations fail with dns.ErrInvalidName.
func (r *Resolver) buildQuery(txid uint16, hostname string) ([]byte, error) {
	p := dns.Packet{
		Header: dns.Header{ID: txid, Flags: dns.RDFlag | dns.ADFlag},
		Questions: []dns.Question{{
			Name:  dns.NormalizeName(hostname),
			Type:  r.RecordType,
			Class: dns.ClassIN,
		}},
	}
	return p.Marshal()
}

// validateResponse checks that a decoded response correlates with the query
// it should answer: matching transaction id, a question section echoing the
// requested name (case-insensitive) and type, and the QR flag set. Any
// mismatch discards the whole response as malformed.
func validateResponse(txid uint16, hostname string, rt dns.RecordType, resp dns.Packet) error {
	if resp.Header.ID != txid {
		return fmt.Errorf("%w: transaction id mismatch (sent %d, got %d)",
			dns.ErrMalformedResponse, txid, resp.Header.ID)
	}
	if !resp.Header.IsResponse() {
		return fmt.Errorf("%w: QR flag not set", dns.ErrMalformedResponse)
	}
	if len(resp.Questions) == 0 {
		return fmt.Errorf("%w: response has no question section", dns.ErrMalformedResponse)
	}
	q := resp.Questions[0]
	if dns.NormalizeName(q.Name) != dns.NormalizeName(hostname) {
		return fmt.Errorf("%w: question name mismatch (asked %q, echoed %q)",
			dns.ErrMalformedResponse, hostname, q.Name)
	}
	if q.Type != rt {
		return fmt.Errorf("%w: question type mismatch (asked %s, echoed %s)",
			dns.ErrMalformedResponse, rt, q.Type)
	}
	return nil
}

// extractRecords converts decoded answer records to display form, in the
// order received, without reordering or deduplication.
func extractRecords(answers []dns.Record) []RecordView {
	if len(answers) == 0 {
		return nil
	}
	views := make([]RecordView, 0, len(answers))
	for _, rr := range answers {
		h := rr.Header()
		v := RecordView{
			Name:  h.Name,
			TTL:   h.TTL,
			Class: h.Class.String(),
			Type:  rr.Type().String(),
		}
		switch rec := rr.(type) {
		case *dns.IPRecord:
			v.Data = rec.Addr.String()
		case *dns.NameRecord:
			v.Data = rec.Target
		case *dns.OpaqueRecord:
			v.Data = hex.EncodeToString(rec.Data)
		}
		views = append(views, v)
	}
	return views
}

func (r *Resolver) nextID() uint16 {
	if r.NextID != nil {
		return r.NextID()
	}
	return RandomID()
}

func (r *Resolver) client() *transport.Client {
	if r.Client != nil {
		return r.Client
	}
	return &transport.Client{}
}
