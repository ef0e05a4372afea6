package telnet

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet protocol bytes (RFC 854).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// maxLineLength caps a single chat line; longer input is truncated.
const maxLineLength = 1024

// iacState tracks where a byte stream is within a Telnet command sequence.
type iacState int

const (
	stateData iacState = iota
	stateIAC            // saw IAC
	stateOption         // saw IAC WILL/WONT/DO/DONT, option byte next
	stateSub            // inside IAC SB ... IAC SE
	stateSubIAC         // saw IAC inside a sub-negotiation
)

// iacFilter strips Telnet commands from a byte stream one byte at a time.
type iacFilter struct {
	state iacState
}

// feed consumes b and reports whether it is a data byte to keep.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stateIAC:
		switch b {
		case WILL, WONT, DO, DONT:
			f.state = stateOption
		case SB:
			f.state = stateSub
		case IAC:
			f.state = stateData
			return IAC, true
		default:
			f.state = stateData
		}
	case stateOption:
		f.state = stateData
	case stateSub:
		if b == IAC {
			f.state = stateSubIAC
		}
	case stateSubIAC:
		if b == SE {
			f.state = stateData
		} else {
			f.state = stateSub
		}
	default:
		if b == IAC {
			f.state = stateIAC
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// FilterIAC removes Telnet command sequences from input. An escaped IAC IAC
// yields a single 0xFF data byte. A sequence cut off at the end of input is
// dropped.
//
// Postcondition: len(result) <= len(input).
func FilterIAC(input []byte) []byte {
	var f iacFilter
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if d, ok := f.feed(b); ok {
			out = append(out, d)
		}
	}
	return out
}

// Conn is a line-oriented chat connection speaking just enough Telnet to
// keep negotiation bytes out of the text.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	filter iacFilter
	wmu    sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. Zero timeouts disable the corresponding deadline.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead so clients run in character-at-a-time
// friendly mode.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line without its terminator. CR, LF and CRLF all
// end a line. Control characters other than tab are dropped and lines longer
// than maxLineLength are truncated.
//
// Postcondition: On error, the partial line read so far is returned with it.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		d, ok := c.filter.feed(b)
		if !ok {
			continue
		}
		switch {
		case d == '\n':
			return line.String(), nil
		case d == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case d < 32 && d != '\t':
			continue
		}
		if line.Len() < maxLineLength {
			line.WriteByte(d)
		}
	}
}

// Write sends data as is.
func (c *Conn) Write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by CRLF. Embedded LF characters are expanded
// to CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.Write([]byte(crlf(text) + "\r\n"))
}

// WriteLines sends each line followed by CRLF in a single write.
func (c *Conn) WriteLines(lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(crlf(l))
		b.WriteString("\r\n")
	}
	return c.Write([]byte(b.String()))
}

// WritePrompt sends prompt with no line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

func crlf(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}
