package net

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lofbot/client/internal/net/packet"
)

// preambleLen is the account id the char and map servers send ahead of any
// framed packet.
const preambleLen = 4

// readInto performs one read from conn and feeds whatever arrived into buf.
// A zero-byte read at end of stream returns io.EOF.
func readInto(conn net.Conn, buf *packet.Buffer, scratch []byte, timeout time.Duration) error {
	setReadDeadline(conn, timeout)
	n, err := conn.Read(scratch)
	if n > 0 {
		buf.Feed(scratch[:n])
		return nil
	}
	if err == nil {
		return io.ErrNoProgress
	}
	return err
}

// setReadDeadline arms the next read, or clears a deadline left over from the
// handshake when timeout is 0.
func setReadDeadline(conn net.Conn, timeout time.Duration) {
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
		return
	}
	conn.SetReadDeadline(time.Time{})
}

// discardPreamble drops the unframed 4-byte header of char and map servers.
func discardPreamble(conn net.Conn, timeout time.Duration) error {
	setReadDeadline(conn, timeout)
	var pre [preambleLen]byte
	if _, err := io.ReadFull(conn, pre[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrClosedEarly
		}
		return fmt.Errorf("read preamble: %w", err)
	}
	return nil
}

// writeFrame writes one complete frame to conn.
func writeFrame(conn net.Conn, data []byte, timeout time.Duration) error {
	if timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", packet.Label(frameID(data)), err)
	}
	return nil
}

func frameID(frame []byte) uint16 {
	if len(frame) < 2 {
		return 0
	}
	return uint16(frame[0]) | uint16(frame[1])<<8
}
