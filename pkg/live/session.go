package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/glimmer-dev/glimmer/pkg/host"
	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

// frame is one render update pushed to the client.
type frame struct {
	Seq  uint64 `json:"seq"`
	HTML string `json:"html"`
}

// session ties one WebSocket connection to one host and instance.
type session struct {
	conn   *websocket.Conn
	server *Server
	logger *slog.Logger

	h  *host.Host
	in *host.Instance

	// writeMu serializes WebSocket writes.
	writeMu sync.Mutex

	sendSeq atomic.Uint64
	closed  atomic.Bool
}

func newSession(conn *websocket.Conn, server *Server) *session {
	s := &session{
		conn:   conn,
		server: server,
		logger: server.logger.With("remote", conn.RemoteAddr().String()),
	}

	s.h = host.New(
		host.WithLogger(s.logger),
		host.WithRenderSink(func(in *host.Instance, tree *vdom.VNode) {
			if server.cfg.Metrics != nil {
				server.cfg.Metrics.RenderPasses.Inc()
				server.cfg.Metrics.Rerenders.Inc()
			}
			s.sendTree(tree)
		}),
	)
	return s
}

// run mounts the page and pumps render updates until the connection or the
// request context ends.
func (s *session) run(ctx context.Context) {
	defer s.close()

	render := s.server.page()
	s.in = s.h.Mount(render)
	if s.server.cfg.Metrics != nil {
		s.server.cfg.Metrics.RenderPasses.Inc()
	}
	s.sendTree(s.in.LastTree())

	// Read loop exists only to detect the peer going away.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := s.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case <-s.h.RenderSignal():
			s.flush(ctx)
		}
	}
}

// flush drains the host's dirty queue; the render sink sends the frames.
func (s *session) flush(ctx context.Context) {
	if s.server.cfg.Tracer != nil {
		s.server.cfg.Tracer.RenderPass(ctx, s.in.ID(), true, func() {
			s.h.Flush()
		})
		return
	}
	s.h.Flush()
}

// sendTree serializes the tree and pushes it as a frame.
func (s *session) sendTree(tree *vdom.VNode) {
	if s.closed.Load() {
		return
	}

	html, err := s.server.renderer.RenderToString(tree)
	if err != nil {
		s.logger.Error("render to string failed", "error", err)
		return
	}

	f := frame{
		Seq:  s.sendSeq.Add(1),
		HTML: html,
	}
	payload, err := json.Marshal(f)
	if err != nil {
		s.logger.Error("frame encode failed", "error", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.logger.Error("write error", "error", err)
		s.closed.Store(true)
		return
	}

	s.logger.Debug("sent frame", "seq", f.Seq, "bytes", len(payload))
}

// close unmounts the instance and closes the connection. Idempotent.
func (s *session) close() {
	if s.closed.Swap(true) {
		// Connection already failed; still release the instance.
	}
	if s.in != nil {
		s.in.Unmount()
	}
	s.conn.Close()
	s.logger.Debug("session closed")
}
