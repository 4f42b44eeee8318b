/*
 * r3000 - Remote debug protocol server
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package debugstub implements a remote debug protocol server: a textual
// `$<payload>#<checksum>` packet protocol over TCP, one connection at a
// time, driving the machine through its master.Packet channel.
package debugstub

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/rcornwell/r3000/internal/master"
)

// Server accepts one remote debugger connection at a time on addr and
// services it by exchanging master.Packet requests with the machine
// driver's polling loop.
type Server struct {
	addr     string
	master   chan<- master.Packet
	listener net.Listener
	wg       sync.WaitGroup
	shutdown chan struct{}
}

// New builds a Server that will listen on addr once Start is called.
func New(addr string, m chan<- master.Packet) *Server {
	return &Server{addr: addr, master: m, shutdown: make(chan struct{})}
}

// Start begins accepting connections in the background.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("debugstub: listen %s: %w", s.addr, err)
	}
	s.listener = l
	slog.Info("debug stub listening", "addr", l.Addr().String())
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and waits for the accept loop to exit. A
// connection already in progress is not closed: Stop returns only after
// that debugger disconnects.
func (s *Server) Stop() {
	close(s.shutdown)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				slog.Error("debugstub accept", "err", err)
				return
			}
		}
		// One debugger at a time: a second connection would just contend
		// with the first over the same master channel, so it is served
		// serially.
		s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	slog.Info("debugger connected", "remote", conn.RemoteAddr().String())
	sess := &session{
		conn:   conn,
		r:      bufio.NewReader(conn),
		master: s.master,
	}
	for {
		pkt, ok := sess.readPacket()
		if !ok {
			slog.Info("debugger disconnected", "remote", conn.RemoteAddr().String())
			return
		}
		reply := sess.dispatch(pkt)
		if err := sess.sendPacket(reply); err != nil {
			slog.Error("debugstub write", "err", err)
			return
		}
	}
}

// session holds the per-connection framing state. badFrames counts
// consecutive checksum failures; three in a row drops the connection
// without ever touching the CPU.
type session struct {
	conn      net.Conn
	r         *bufio.Reader
	master    chan<- master.Packet
	badFrames int
}

// readPacket reads one `$<payload>#<cc>` frame, replying with '+' on a
// good checksum and '-' (asking the far end to resend) on a bad one. It
// returns ok=false once the connection should be dropped, either because
// it was closed or three consecutive frames failed their checksum.
func (s *session) readPacket() (string, bool) {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return "", false
		}
		if b == 0x03 { // Ctrl-C: treat as an interrupt request, GDB's own convention
			return "\x03", true
		}
		if b != '$' {
			continue // resync: skip stray bytes between frames
		}

		payload, err := s.r.ReadString('#')
		if err != nil {
			return "", false
		}
		payload = strings.TrimSuffix(payload, "#")

		csHex := make([]byte, 2)
		if _, err := fullRead(s.r, csHex); err != nil {
			return "", false
		}
		want, err := strconv.ParseUint(string(csHex), 16, 8)
		if err != nil || byte(want) != checksum(payload) {
			s.badFrames++
			s.conn.Write([]byte{'-'})
			if s.badFrames >= 3 {
				return "", false
			}
			continue
		}
		s.badFrames = 0
		s.conn.Write([]byte{'+'})
		return payload, true
	}
}

func fullRead(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		b, err := r.ReadByte()
		if err != nil {
			return n, err
		}
		buf[n] = b
		n++
	}
	return n, nil
}

// checksum is the unsigned 8-bit sum of payload's bytes, mod 256.
func checksum(payload string) byte {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum += payload[i]
	}
	return sum
}

// sendPacket frames and writes a reply payload.
func (s *session) sendPacket(payload string) error {
	cs := checksum(payload)
	frame := fmt.Sprintf("$%s#%02x", payload, cs)
	_, err := s.conn.Write([]byte(frame))
	return err
}

// req sends pkt on the master channel and waits for its reply.
func (s *session) req(pkt master.Packet) master.Reply {
	reply := make(chan master.Reply, 1)
	pkt.Reply = reply
	s.master <- pkt
	return <-reply
}
