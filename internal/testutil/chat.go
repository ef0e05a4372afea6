package testutil

import (
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/artifactsbot/internal/frontend/telnet"
)

// ChatClient drives the chat listener over TCP. Output is matched as plain
// text: telnet negotiation and ANSI colour codes are removed before matching.
type ChatClient struct {
	t    *testing.T
	conn net.Conn
	raw  []byte
	// seen is how much of the plain transcript earlier Expect calls consumed.
	seen int
}

func (c *ChatClient) plain() string {
	return telnet.StripANSI(string(telnet.FilterIAC(c.raw)))[c.seen:]
}

// DialChat connects to addr and closes the connection when the test ends.
func DialChat(t *testing.T, addr string) *ChatClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &ChatClient{t: t, conn: conn}
}

// Expect returns the plain text up to and including the first occurrence of
// substr. Text after the match is kept for the next call. The test fails if
// substr has not arrived within timeout.
func (c *ChatClient) Expect(substr string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	chunk := make([]byte, 4096)
	for {
		text := c.plain()
		if i := strings.Index(text, substr); i >= 0 {
			end := i + len(substr)
			c.seen += end
			return text[:end]
		}
		_ = c.conn.SetReadDeadline(deadline)
		n, err := c.conn.Read(chunk)
		c.raw = append(c.raw, chunk[:n]...)
		if err == nil || strings.Contains(c.plain(), substr) {
			continue
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			c.t.Fatalf("timed out waiting for %q; have %q", substr, c.plain())
		}
		c.t.Fatalf("waiting for %q: %v; have %q", substr, err, c.plain())
	}
}

// Send writes text as one CRLF-terminated line.
func (c *ChatClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(text + "\r\n")); err != nil {
		c.t.Fatalf("send %q: %v", text, err)
	}
}
