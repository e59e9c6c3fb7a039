// Package transport exchanges a single encoded DNS query for a response
// datagram over UDP.
//
// Each exchange uses its own socket, so concurrent queries need no shared
// correlation table: a socket only ever sees replies addressed to its query,
// and anything with the wrong transaction id is discarded.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jroosing/rigo/internal/pool"
)

// Default client configuration.
const (
	DefaultTimeout  = 3 * time.Second // Per-attempt wait for a reply
	DefaultRetries  = 2               // Additional attempts after the first
	DefaultRecvSize = 4096            // UDP receive buffer size
)

// ErrTimeout reports that no correlated response arrived within the
// configured attempts.
var ErrTimeout = errors.New("no response from server")

// Client performs one-shot DNS-over-UDP exchanges against a resolver.
//
// The zero value is usable: a zero Timeout or RecvSize takes the package
// default, a negative Retries takes DefaultRetries, and Retries of zero
// means a single attempt. A Client is safe for concurrent use: every
// Exchange call dials its own socket and only the receive-buffer pool is
// shared.
type Client struct {
	Timeout  time.Duration // Wait per attempt before retrying
	Retries  int           // Additional attempts after the first times out
	RecvSize int           // Receive buffer size in bytes

	poolOnce sync.Once
	bufs     *pool.BufferPool
}

// Exchange sends query to server (host:port) and waits for a datagram whose
// transaction id matches txid. Datagrams bearing any other id are discarded
// and the wait continues; this guards against stale or spoofed replies
// arriving after a retry.
//
// On expiry of the per-attempt timeout the query is re-sent, up to Retries
// additional attempts, before ErrTimeout is surfaced. Socket failures other
// than timeouts surface immediately. Context cancellation is reported as
// ErrTimeout so a process-level deadline reads as a per-query timeout.
func (c *Client) Exchange(ctx context.Context, server string, txid uint16, query []byte) ([]byte, error) {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", server, err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := c.Retries
	if retries < 0 {
		retries = DefaultRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}

		resp, err := c.exchangeOnce(ctx, addr, txid, query, timeout)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Only a timed-out attempt earns a retry.
		if !isTimeoutError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrTimeout, lastErr)
}

// exchangeOnce performs a single send/receive attempt on a fresh socket.
func (c *Client) exchangeOnce(
	ctx context.Context,
	addr *net.UDPAddr,
	txid uint16,
	query []byte,
	timeout time.Duration,
) ([]byte, error) {
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	defer conn.Close()

	// Deadline from timeout or context, whichever is sooner
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(query); err != nil {
		return nil, fmt.Errorf("transport: send to %s: %w", addr, err)
	}

	buf := c.buffers().Get()
	defer c.buffers().Put(buf)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("transport: receive from %s: %w", addr, err)
		}
		if n < 2 || binary.BigEndian.Uint16(buf[:2]) != txid {
			// Not our conversation; keep waiting until the deadline.
			continue
		}
		resp := make([]byte, n)
		copy(resp, buf[:n])
		return resp, nil
	}
}

// buffers lazily initializes the shared receive-buffer pool.
func (c *Client) buffers() *pool.BufferPool {
	c.poolOnce.Do(func() {
		size := c.RecvSize
		if size <= 0 {
			size = DefaultRecvSize
		}
		c.bufs = pool.NewBufferPool(size)
	})
	return c.bufs
}

// isTimeoutError checks if an error is a timeout worth retrying.
func isTimeoutError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
