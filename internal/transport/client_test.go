package transport

import (
	"context"
	"encoding/binary"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startResponder runs a one-shot UDP server on 127.0.0.1:0 whose behavior
// per received datagram is decided by handle; returning nil sends nothing.
func startResponder(t *testing.T, handle func(req []byte) []byte) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 4096)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			if resp := handle(buf[:n]); resp != nil {
				_, _ = conn.WriteToUDP(resp, addr)
			}
		}
	}()
	return conn.LocalAddr().String()
}

// echoID builds a minimal 12-byte reply bearing the given transaction id.
func echoID(id uint16) []byte {
	resp := make([]byte, 12)
	binary.BigEndian.PutUint16(resp[0:2], id)
	resp[2] = 0x80 // QR
	return resp
}

func TestExchange_MatchingResponse(t *testing.T) {
	addr := startResponder(t, func(req []byte) []byte {
		return echoID(binary.BigEndian.Uint16(req[0:2]))
	})

	c := &Client{Timeout: time.Second, Retries: 0}
	query := make([]byte, 12)
	binary.BigEndian.PutUint16(query[0:2], 0x4242)

	resp, err := c.Exchange(context.Background(), addr, 0x4242, query)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resp), 12)
	assert.Equal(t, uint16(0x4242), binary.BigEndian.Uint16(resp[0:2]))
}

func TestExchange_MismatchedIDIgnoredThenTimeout(t *testing.T) {
	addr := startResponder(t, func(req []byte) []byte {
		// Always answer with the wrong transaction id.
		return echoID(binary.BigEndian.Uint16(req[0:2]) + 1)
	})

	c := &Client{Timeout: 200 * time.Millisecond, Retries: 0}
	query := make([]byte, 12)
	binary.BigEndian.PutUint16(query[0:2], 0x1111)

	_, err := c.Exchange(context.Background(), addr, 0x1111, query)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExchange_StaleDatagramBeforeAnswer(t *testing.T) {
	// The responder sends a wrong-id datagram first, then the real answer.
	// The client must discard the first and return the second.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	go func() {
		buf := make([]byte, 4096)
		n, client, err := conn.ReadFromUDP(buf)
		if err != nil || n < 2 {
			return
		}
		id := binary.BigEndian.Uint16(buf[0:2])
		_, _ = conn.WriteToUDP(echoID(id^0xFFFF), client) // stale
		_, _ = conn.WriteToUDP(echoID(id), client)        // real
	}()

	c := &Client{Timeout: time.Second, Retries: 0}
	query := make([]byte, 12)
	binary.BigEndian.PutUint16(query[0:2], 0x7777)

	resp, err := c.Exchange(context.Background(), conn.LocalAddr().String(), 0x7777, query)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x7777), binary.BigEndian.Uint16(resp[0:2]))
}

func TestExchange_RetriesAfterSilentAttempt(t *testing.T) {
	// The responder stays silent for the first datagram and answers the
	// second, so only the retry succeeds.
	var seen atomic.Int32
	addr := startResponder(t, func(req []byte) []byte {
		if seen.Add(1) == 1 {
			return nil
		}
		return echoID(binary.BigEndian.Uint16(req[0:2]))
	})

	c := &Client{Timeout: 150 * time.Millisecond, Retries: 2}
	query := make([]byte, 12)
	binary.BigEndian.PutUint16(query[0:2], 0x2222)

	resp, err := c.Exchange(context.Background(), addr, 0x2222, query)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2222), binary.BigEndian.Uint16(resp[0:2]))
	assert.GreaterOrEqual(t, seen.Load(), int32(2))
}

func TestExchange_NoResponderTimesOut(t *testing.T) {
	// Reserve a port with no reader behind it.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()

	c := &Client{Timeout: 100 * time.Millisecond, Retries: 1}
	start := time.Now()
	_, err = c.Exchange(context.Background(), addr, 1, make([]byte, 12))
	elapsed := time.Since(start)
	_ = conn.Close()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	// Two attempts at 100ms each
	assert.GreaterOrEqual(t, elapsed, 180*time.Millisecond)
}

func TestExchange_ContextCancellation(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := &Client{Timeout: 5 * time.Second, Retries: 3}
	start := time.Now()
	_, err = c.Exchange(ctx, conn.LocalAddr().String(), 1, make([]byte, 12))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second, "context deadline must cut the attempt short")
}

func TestExchange_InvalidAddress(t *testing.T) {
	c := &Client{Timeout: time.Second}
	_, err := c.Exchange(context.Background(), "not a host:port", 1, make([]byte, 12))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestClientDefaults(t *testing.T) {
	c := &Client{}
	assert.Equal(t, DefaultRecvSize, len(c.buffers().Get()))
}
