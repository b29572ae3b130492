package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/spa/pkg/navigation"
	"github.com/vango-dev/spa/pkg/routepath"
	"github.com/vango-dev/spa/pkg/router"
	"github.com/vango-dev/spa/pkg/vdom"
)

// session is one live connection.
type session struct {
	h      *Handler
	conn   *websocket.Conn
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	history   *navigation.History
	container *vdom.Container
	router    *router.Router

	out   chan Frame
	dirty chan struct{}
	done  chan struct{}
}

func newSession(h *Handler, conn *websocket.Conn, r *http.Request) *session {
	ctx, cancel := context.WithCancel(r.Context())
	return &session{
		h:      h,
		conn:   conn,
		logger: h.logger.With("remote", r.RemoteAddr),
		ctx:    ctx,
		cancel: cancel,
		out:    make(chan Frame, 16),
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// navigator is the router.Navigator of a session.
type navigator struct{ s *session }

// Replace tells the client about the new location and dispatches it.
// External paths are left to the client to load.
func (n navigator) Replace(path string) {
	s := n.s
	if s.h.external[navigation.Pathname(path)] {
		s.send(Frame{T: FrameReplace, Path: path, Reload: true})
		return
	}
	s.send(Frame{T: FrameReplace, Path: path})
	s.history.Replace(path)
}

// Pathname is the path the client is currently at.
func (n navigator) Pathname() string {
	return n.s.history.Pathname()
}

func (s *session) run(initial string) {
	s.h.cfg.Metrics.LiveConnect()
	defer s.h.cfg.Metrics.LiveDisconnect()
	defer s.conn.Close()
	defer s.cancel()

	start := "/"
	if initial != "" {
		san, err := routepath.SanitizeNavPath(initial)
		if err != nil {
			s.logger.Warn("live: rejected initial path", "path", initial, "error", err)
		} else {
			start = san.String()
		}
	}

	s.history = navigation.NewHistory(start)
	s.container = vdom.NewContainer(s.h.cfg.ContainerID)
	removeListener := s.container.OnChange(s.markDirty)
	defer removeListener()

	rt, err := s.h.cfg.Factory(s.container, navigator{s})
	if err != nil {
		s.logger.Error("live: router setup failed", "error", err)
		s.h.cfg.Metrics.LiveError("setup")
		s.writeNow(Frame{T: FrameError, Msg: "navigation unavailable"})
		return
	}
	s.router = rt

	go s.writeLoop()

	unbind := navigation.Bind(s.ctx, s.history, rt, s.logger)
	s.readLoop()

	unbind()
	s.cancel()
	_ = rt.Unmount(context.Background())
	rt.Wait()
	<-s.done
}

func (s *session) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// send queues f for the writer. It drops the frame once the session is
// shutting down.
func (s *session) send(f Frame) {
	select {
	case s.out <- f:
	case <-s.ctx.Done():
	}
}

func (s *session) readLoop() {
	s.conn.SetReadLimit(s.h.cfg.ReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * s.h.cfg.PingInterval))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(2 * s.h.cfg.PingInterval))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("live: read failed", "error", err)
				s.h.cfg.Metrics.LiveError("read")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(2 * s.h.cfg.PingInterval))

		f, err := DecodeFrame(data)
		if err != nil {
			s.h.cfg.Metrics.LiveError("decode")
			s.send(Frame{T: FrameError, Msg: "malformed frame"})
			continue
		}
		s.handle(f)
	}
}

func (s *session) handle(f Frame) {
	switch f.T {
	case FrameNav:
		san, err := routepath.SanitizeNavPath(f.Path)
		if err != nil {
			s.h.cfg.Metrics.LiveError("path")
			s.send(Frame{T: FrameError, Path: f.Path, Msg: err.Error()})
			return
		}
		s.history.Push(san.String())
	default:
		s.send(Frame{T: FrameError, Msg: "unknown frame type " + f.T})
	}
}

func (s *session) writeLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.h.cfg.PingInterval)
	defer ticker.Stop()

	var rendered uint64
	for {
		select {
		case <-s.ctx.Done():
			return

		case f := <-s.out:
			if !s.writeNow(f) {
				return
			}

		case <-s.dirty:
			// Frames queued before the change (a redirect) go first.
			if !s.drain() {
				return
			}
			f, version, ok := s.mountFrame(rendered)
			if !ok {
				continue
			}
			rendered = version
			if !s.writeNow(f) {
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.h.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.fail(err)
				return
			}
		}
	}
}

func (s *session) drain() bool {
	for {
		select {
		case f := <-s.out:
			if !s.writeNow(f) {
				return false
			}
		default:
			return true
		}
	}
}

// mountFrame renders the container unless it has not changed since the
// version last sent.
func (s *session) mountFrame(last uint64) (Frame, uint64, bool) {
	html, title, version, err := s.h.renderer.RenderContainer(s.container)
	if err != nil {
		s.logger.Error("live: render failed", "error", err)
		return Frame{T: FrameError, Msg: "render failed"}, last, true
	}
	if version == last {
		return Frame{}, last, false
	}
	return Frame{
		T:     FrameMount,
		Path:  s.history.Location(),
		HTML:  html,
		Title: title,
	}, version, true
}

func (s *session) writeNow(f Frame) bool {
	b, err := EncodeFrame(f)
	if err != nil {
		s.logger.Error("live: encode failed", "error", err)
		return true
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.h.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		s.fail(err)
		return false
	}
	return true
}

func (s *session) fail(err error) {
	if !errors.Is(err, websocket.ErrCloseSent) {
		s.logger.Debug("live: write failed", "error", err)
		s.h.cfg.Metrics.LiveError("write")
	}
	s.cancel()
	_ = s.conn.Close()
}
