package mdi

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"strings"
)

// TCPComm is a Comm over a single TCP connection.
type TCPComm struct {
	conn   net.Conn
	closed bool
}

// NewTCPComm wraps an established connection. Exposed so tests can use
// net.Pipe ends directly.
func NewTCPComm(conn net.Conn) *TCPComm {
	return &TCPComm{conn: conn}
}

// Accept listens on the configured port and accepts exactly one engine
// connection. The listener is closed once the engine is connected; there is
// only ever one engine per run.
func Accept(opts *Options) (*TCPComm, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.Port))
	if err != nil {
		return nil, fmt.Errorf("mdi: listen on port %d: %w", opts.Port, err)
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("mdi: accept engine connection: %w", err)
	}
	return NewTCPComm(conn), nil
}

// Connect dials a listening driver. This is the engine side of Accept and is
// what test doubles and the loopback tests use.
func Connect(opts *Options) (*TCPComm, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", opts.Hostname, opts.Port))
	if err != nil {
		return nil, fmt.Errorf("mdi: connect to %s:%d: %w", opts.Hostname, opts.Port, err)
	}
	return NewTCPComm(conn), nil
}

func (c *TCPComm) SendCommand(cmd string) error {
	if c.closed {
		return ErrClosed
	}
	if len(cmd) > CommandLength {
		return fmt.Errorf("%w: %q", ErrCommandTooLong, cmd)
	}
	buf := make([]byte, CommandLength)
	copy(buf, cmd)
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("mdi: send command %s: %w", cmd, err)
	}
	return nil
}

func (c *TCPComm) SendInts(v []int) error {
	if c.closed {
		return ErrClosed
	}
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(int32(x)))
	}
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("mdi: send %d ints: %w", len(v), err)
	}
	return nil
}

func (c *TCPComm) SendFloats(v []float64) error {
	if c.closed {
		return ErrClosed
	}
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(x))
	}
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("mdi: send %d floats: %w", len(v), err)
	}
	return nil
}

func (c *TCPComm) RecvInts(n int) ([]int, error) {
	if c.closed {
		return nil, ErrClosed
	}
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, fmt.Errorf("mdi: receive %d ints: %w", n, err)
	}
	v := make([]int, n)
	for i := range v {
		v[i] = int(int32(binary.LittleEndian.Uint32(buf[4*i:])))
	}
	return v, nil
}

func (c *TCPComm) RecvFloats(n int) ([]float64, error) {
	if c.closed {
		return nil, ErrClosed
	}
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, fmt.Errorf("mdi: receive %d floats: %w", n, err)
	}
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return v, nil
}

func (c *TCPComm) RecvString(n int) (string, error) {
	if c.closed {
		return "", ErrClosed
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return "", fmt.Errorf("mdi: receive %d-byte string: %w", n, err)
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// RecvCommand reads one command token. Only the engine side of a connection
// uses this; it exists for the loopback tests and engine stubs.
func (c *TCPComm) RecvCommand() (string, error) {
	if c.closed {
		return "", ErrClosed
	}
	buf := make([]byte, CommandLength)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return "", fmt.Errorf("mdi: receive command: %w", err)
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// SendString sends a NUL-padded n-byte string buffer. Engine side of
// RecvString.
func (c *TCPComm) SendString(s string, n int) error {
	if c.closed {
		return ErrClosed
	}
	if len(s) > n {
		return fmt.Errorf("mdi: string longer than %d-byte buffer", n)
	}
	buf := make([]byte, n)
	copy(buf, s)
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("mdi: send string: %w", err)
	}
	return nil
}

func (c *TCPComm) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
