package telnet

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFilterIAC(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{"plain", []byte("hello"), []byte("hello")},
		{"will", []byte{IAC, WILL, OptEcho, 'h', 'i'}, []byte("hi")},
		{"do mid-stream", []byte{'a', IAC, DO, OptLinemode, 'b'}, []byte("ab")},
		{"dont only", []byte{IAC, DONT, OptEcho}, []byte{}},
		{"sub-negotiation", []byte{IAC, SB, 24, 0, 'x', 't', IAC, SE, 'z'}, []byte("z")},
		{"escaped iac", []byte{'a', IAC, IAC, 'b'}, []byte{'a', IAC, 'b'}},
		{"nop", []byte{'x', IAC, NOP, 'y'}, []byte("xy")},
		{"truncated", []byte{'x', IAC, WILL}, []byte("x")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterIAC(tc.input))
		})
	}
}

func TestPropertyFilterIAC_NoIACBytesPassThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOf(rapid.ByteRange(0, 254)).Draw(t, "input")
		got := FilterIAC(input)
		if !bytes.Equal(got, input) && len(input) > 0 {
			t.Fatalf("FilterIAC changed IAC-free input: %v -> %v", input, got)
		}
	})
}

func TestPropertyFilterIAC_NeverLonger(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOf(rapid.Byte()).Draw(t, "input")
		assert.LessOrEqual(t, len(FilterIAC(input)), len(input))
	})
}

// Property: commands wrapped around text never leak into the output.
func TestPropertyFilterIAC_StripsInterleavedCommands(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.SliceOf(rapid.ByteRange(32, 126)).Draw(t, "text")
		var input []byte
		for _, b := range text {
			if rapid.Bool().Draw(t, "cmd") {
				input = append(input, IAC, rapid.SampledFrom([]byte{WILL, WONT, DO, DONT}).Draw(t, "verb"), OptEcho)
			}
			input = append(input, b)
		}
		if !bytes.Equal(FilterIAC(input), text) && len(text) > 0 {
			t.Fatalf("got %q want %q", FilterIAC(input), text)
		}
	})
}

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return NewConn(server, time.Second, time.Second), client
}

func TestConn_ReadLineTerminators(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("one\r\ntwo\nthree\r"))
		_, _ = client.Write([]byte{IAC, WILL, OptEcho})
		_, _ = client.Write([]byte("fo\x07ur\n"))
	}()

	for _, want := range []string{"one", "two", "three", "four"} {
		line, err := conn.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
}

func TestConn_ReadLineTruncatesLongInput(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write(append(bytes.Repeat([]byte("a"), maxLineLength+50), '\n'))
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Len(t, line, maxLineLength)
}

func TestConn_ReadLineEOFReturnsPartial(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("partial"))
		_ = client.Close()
	}()

	line, err := conn.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "partial", line)
}

func TestConn_WriteLinesUsesCRLF(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_ = conn.WriteLines([]string{"a", "b\nc"})
	}()

	buf := make([]byte, 64)
	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\nc\r\n", string(buf[:n]))
}

func TestConn_Negotiate(t *testing.T) {
	conn, client := pipeConn(t)
	go func() { _ = conn.Negotiate() }()

	buf := make([]byte, 3)
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, buf)
}
