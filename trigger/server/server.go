/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package server implements the trigger service: a TCP listener that
// accepts exactly one connection at a time, dispatches
// each single-byte opcode to an equal-cost callback, and replies with
// the three wall-clock timestamps the synchronized trigger algorithm
// needs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/cespare/xxhash"
	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/polos-io/polos/chrono"
	"github.com/polos-io/polos/health"
	"github.com/polos-io/polos/status"
	"github.com/polos-io/polos/triggerproto"
)

// connTimeout bounds accept() so the loop can observe the stop signal.
const connTimeout = time.Second

// encodeMeasureIterations is how many times the reply is formatted to
// estimate ts_encode_time.
const encodeMeasureIterations = 10000

// Config controls one Server instance.
type Config struct {
	Port         int
	CB1          func()
	CB2          func()
	RecvTimeout  time.Duration
	ServerName   string
	Status       *status.AtomicHandler
	MetricsAddr  string // empty disables the metrics HTTP server
	HealthProbes []health.Prober
	HealthPeriod time.Duration // defaults to time.Minute
}

// Server is the trigger service.
type Server struct {
	cfg   Config
	stats *Stats

	tsEncodeTime time.Duration
}

// New builds a Server from cfg, filling in defaults (port 8888,
// absent callbacks become no-ops).
func New(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = triggerproto.DefaultPort
	}
	if cfg.CB1 == nil {
		cfg.CB1 = func() {}
	}
	if cfg.CB2 == nil {
		cfg.CB2 = func() {}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "TriggerServer"
	}
	if cfg.Status == nil {
		cfg.Status = status.NewAtomicHandler(status.Error, "Idle")
	}
	if cfg.HealthPeriod == 0 {
		cfg.HealthPeriod = time.Minute
	}
	if cfg.RecvTimeout == 0 {
		cfg.RecvTimeout = 5 * time.Second
	}
	return &Server{cfg: cfg, stats: NewStats()}
}

// Run listens, accepts connections, and serves until ctx is canceled.
// It runs the accept loop, the periodic health checker, and (if
// configured) the metrics server under one errgroup cancellation scope.
func (s *Server) Run(ctx context.Context) error {
	s.tsEncodeTime = measureEncodeTime()
	log.Infof("%s measured ts_encode_time=%s", s.cfg.ServerName, s.tsEncodeTime)

	lc := net.ListenConfig{Control: setReuseAddr}
	rawLn, err := lc.Listen(ctx, "tcp", fmt.Sprintf("0.0.0.0:%d", s.cfg.Port))
	if err != nil {
		s.cfg.Status.SetStatus(status.Error, fmt.Sprintf("listen: %v", err))
		return fmt.Errorf("server: listen: %w", err)
	}
	tcpLn, _ := rawLn.(*net.TCPListener)
	ln := netutil.LimitListener(rawLn, 1)
	defer ln.Close()

	log.Infof("%s listening on %s", s.cfg.ServerName, rawLn.Addr())
	s.cfg.Status.SetStatus(status.Warning, "Waiting connection...")

	if err := notifyReady(); err != nil {
		log.Warnf("%s sd_notify: %v", s.cfg.ServerName, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.acceptLoop(ctx, ln, tcpLn) })
	if len(s.cfg.HealthProbes) > 0 {
		g.Go(func() error { return s.healthLoop(ctx) })
	}
	if s.cfg.MetricsAddr != "" {
		g.Go(func() error { return s.stats.ServeMetrics(s.cfg.MetricsAddr) })
	}

	err = g.Wait()
	s.cfg.Status.SetStatus(status.Error, "Finished")
	if errors.Is(err, errServerDone) {
		return nil
	}
	return err
}

// Port reports the configured listen port.
func (s *Server) Port() int { return s.cfg.Port }

// acceptLoop bounds each accept() to connTimeout (via tcpLn's deadline,
// when the underlying listener supports one) so it notices ctx
// cancellation promptly instead of blocking forever on an idle socket.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, tcpLn *net.TCPListener) error {
	for {
		if ctx.Err() != nil {
			return errServerDone
		}
		if tcpLn != nil {
			_ = tcpLn.SetDeadline(time.Now().Add(connTimeout))
		}
		c, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return errServerDone
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		err = s.serveConn(ctx, c)
		switch {
		case err == nil:
			s.cfg.Status.SetStatus(status.Warning, "Waiting connection...")
		case errors.Is(err, errTerminate):
			return errServerDone
		default:
			log.Warnf("%s connection error: %v", s.cfg.ServerName, err)
			return err
		}
		if ctx.Err() != nil {
			return errServerDone
		}
	}
}

// errTerminate is returned by serveConn when the session ends in a way
// that takes down the whole server rather than just the connection: an
// explicit QUIT byte, or a bad opcode (treated as a buggy client, not
// worth continuing to serve).
var errTerminate = fmt.Errorf("server: session terminated")

// errServerDone is what acceptLoop returns for an intentional shutdown
// (QUIT, bad opcode, or external ctx cancellation). Returning a non-nil
// error from it is what makes errgroup cancel the sibling health/metrics
// goroutines; Run() translates it back to a nil error for its caller.
var errServerDone = fmt.Errorf("server: done")

func (s *Server) serveConn(ctx context.Context, c net.Conn) error {
	id := xxhash.Sum64String(c.RemoteAddr().String())
	log.Infof("%s [%016x] connected from %s", s.cfg.ServerName, id, c.RemoteAddr())
	s.cfg.Status.SetStatus(status.OK, fmt.Sprintf("Connected to %s", c.RemoteAddr()))
	defer c.Close()

	table := dispatchTable(s.cfg.CB1, s.cfg.CB2)
	var lastCB float64
	haveCompletedOneCycle := false
	// have we completed at least one cycle? guards against logging an
	// uninitialized lastCB when the connection never served a request.
	defer func() {
		if haveCompletedOneCycle {
			log.Debugf("%s [%016x] last callback at %f", s.cfg.ServerName, id, lastCB)
		}
	}()

	buf := make([]byte, triggerproto.BufferSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := c.SetReadDeadline(time.Now().Add(s.cfg.RecvTimeout)); err != nil {
			return fmt.Errorf("server: set read deadline: %w", err)
		}
		n, err := c.Read(buf)
		tRecv := chrono.WallNow()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return nil // peer reset / closed: return to WAITING
		}
		if n == 0 {
			return nil
		}

		op := triggerproto.Opcode(buf[0])
		if op == triggerproto.Quit {
			log.Infof("%s [%016x] received QUIT", s.cfg.ServerName, id)
			return errTerminate
		}
		entry, known := table[op]
		if !known {
			s.stats.IncError()
			s.cfg.Status.SetStatus(status.Error, fmt.Sprintf("bad request: %v", buf[:n]))
			log.Errorf("%s [%016x] received bad request %v", s.cfg.ServerName, id, buf[:n])
			return errTerminate
		}
		s.stats.IncRequest(entry.label)

		entry.fn()
		tCb := chrono.WallNow()
		lastCB = tCb
		haveCompletedOneCycle = true

		tTx := chrono.WallNow() + s.tsEncodeTime.Seconds()
		reply := triggerproto.Reply{TRecv: tRecv, TCb: tCb, TTx: tTx}
		if err := c.SetWriteDeadline(time.Now().Add(s.cfg.RecvTimeout)); err != nil {
			return fmt.Errorf("server: set write deadline: %w", err)
		}
		if _, err := c.Write([]byte(reply.Format())); err != nil {
			return fmt.Errorf("server: send: %w", err)
		}
		s.stats.IncResponse()
	}
}

func (s *Server) healthLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.HealthPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			statuses := make([]status.Status, 0, len(s.cfg.HealthProbes))
			for _, p := range s.cfg.HealthProbes {
				st := p.Probe()
				statuses = append(statuses, st)
				log.Debugf("%s health probe %s: %s %s", s.cfg.ServerName, p.Name(), st.Kind, st.Message)
			}
			worst := health.Worst(statuses)
			if worst.Kind == status.Error {
				log.Errorf("%s health check failed: %s", s.cfg.ServerName, worst.Message)
			}
		}
	}
}

// measureEncodeTime times the reply-formatting cost once at startup, so
// it can be folded into every t_tx without re-measuring per request.
func measureEncodeTime() time.Duration {
	r := triggerproto.Reply{TRecv: chrono.WallNow(), TCb: chrono.WallNow(), TTx: chrono.WallNow()}
	start := time.Now()
	for i := 0; i < encodeMeasureIterations; i++ {
		_ = r.Format()
	}
	return time.Since(start) / encodeMeasureIterations
}

func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

func notifyReady() error {
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if !supported && err != nil {
		return err
	} else if !supported {
		log.Debug("sd_notify not supported")
	}
	return nil
}
