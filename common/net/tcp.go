package net

import (
	"net"
	"time"
)

// OptimizeTCPConn applies the socket options both connection legs want:
// Nagle disabled, keep-alive on, and enlarged send/receive buffers for the
// sustained play-phase byte volume. No-ops on non-TCP connections.
func OptimizeTCPConn(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tcpConn.SetNoDelay(true); err != nil {
		return err
	}
	if err := tcpConn.SetKeepAlive(true); err != nil {
		return err
	}
	if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
		return err
	}
	if err := tcpConn.SetReadBuffer(512 * 1024); err != nil {
		return err
	}
	if err := tcpConn.SetWriteBuffer(512 * 1024); err != nil {
		return err
	}
	return nil
}
