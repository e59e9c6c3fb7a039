package resolver

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/jroosing/rigo/internal/dns"
	"github.com/jroosing/rigo/internal/transport"
)

// BatchStats collects counters over one batch of lookups.
// All methods are safe for concurrent use and tolerate a nil receiver.
type BatchStats struct {
	queriesTotal   atomic.Uint64
	answered       atomic.Uint64
	timeouts       atomic.Uint64
	nxdomain       atomic.Uint64
	serverErrors   atomic.Uint64
	failures       atomic.Uint64
	latencyTotalNs atomic.Uint64
}

// NewBatchStats creates a new batch statistics collector.
func NewBatchStats() *BatchStats {
	return &BatchStats{}
}

// RecordSuccess records a lookup that produced a NOERROR response.
func (s *BatchStats) RecordSuccess(latency time.Duration) {
	if s == nil {
		return
	}
	s.queriesTotal.Add(1)
	s.answered.Add(1)
	if ns := latency.Nanoseconds(); ns > 0 {
		s.latencyTotalNs.Add(uint64(ns))
	}
}

// RecordRCode records a response carrying a DNS-level failure code.
func (s *BatchStats) RecordRCode(rc dns.RCode) {
	if s == nil {
		return
	}
	s.queriesTotal.Add(1)
	if rc == dns.RCodeNXDomain {
		s.nxdomain.Add(1)
	} else {
		s.serverErrors.Add(1)
	}
}

// RecordExchangeError records a transport failure, distinguishing timeouts.
func (s *BatchStats) RecordExchangeError(err error) {
	if s == nil {
		return
	}
	s.queriesTotal.Add(1)
	if errors.Is(err, transport.ErrTimeout) {
		s.timeouts.Add(1)
	} else {
		s.failures.Add(1)
	}
}

// RecordFailure records a lookup that failed before or after the exchange
// (invalid name, malformed response).
func (s *BatchStats) RecordFailure() {
	if s == nil {
		return
	}
	s.queriesTotal.Add(1)
	s.failures.Add(1)
}

// Snapshot is a point-in-time view of batch statistics.
type Snapshot struct {
	QueriesTotal uint64
	Answered     uint64
	Timeouts     uint64
	NXDomain     uint64
	ServerErrors uint64
	Failures     uint64
	AvgLatencyMs float64
}

// Snapshot returns the current counter values. Average latency covers only
// the lookups that completed with NOERROR.
func (s *BatchStats) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		QueriesTotal: s.queriesTotal.Load(),
		Answered:     s.answered.Load(),
		Timeouts:     s.timeouts.Load(),
		NXDomain:     s.nxdomain.Load(),
		ServerErrors: s.serverErrors.Load(),
		Failures:     s.failures.Load(),
	}
	if snap.Answered > 0 {
		snap.AvgLatencyMs = float64(s.latencyTotalNs.Load()) / float64(snap.Answered) / 1e6
	}
	return snap
}
