// Package live streams a running session to websocket clients and accepts
// editing commands from them.
package live

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ca-modeler/internal/core"
	"ca-modeler/internal/session"
)

const (
	writeWait  = 5 * time.Second
	readWait   = 60 * time.Second
	outboxSize = 8
)

//go:embed index.html
var indexHTML []byte

type client struct {
	out chan []byte
}

type request struct {
	from *client
	cmd  Command
}

// Server owns a session. All session access happens on the goroutine
// running Run; websocket handlers talk to it over channels.
type Server struct {
	sess *session.Session
	log  *slog.Logger

	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	requests   chan request
	closed     chan struct{}
}

// NewServer wraps sess. A nil logger uses core.Logger().
func NewServer(sess *session.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = core.Logger()
	}
	return &Server{
		sess: sess,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		requests:   make(chan request, 64),
		closed:     make(chan struct{}),
	}
}

// Run advances the session at its interval while it is running, applies
// client commands and broadcasts a frame after every change. It returns when
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.closed)
	clients := make(map[*client]struct{})
	timer := core.NewFixedStep(s.sess.Interval())
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				close(c.out)
			}
			return ctx.Err()
		case c := <-s.register:
			clients[c] = struct{}{}
			s.log.Info("live client connected", "clients", len(clients))
			s.send(c, snapshot(s.sess))
		case c := <-s.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.out)
				s.log.Info("live client disconnected", "clients", len(clients))
			}
		case req := <-s.requests:
			if _, ok := clients[req.from]; !ok {
				continue
			}
			if err := s.apply(req.cmd, timer); err != nil {
				s.send(req.from, ErrorMsg{Type: TypeError, Message: err.Error()})
				continue
			}
			s.broadcast(clients)
		case <-ticker.C:
			timer.SetInterval(s.sess.Interval())
			if s.sess.Running() && timer.ShouldStep() {
				s.sess.Step()
				s.broadcast(clients)
			}
		}
	}
}

func (s *Server) apply(cmd Command, timer *core.FixedStep) error {
	switch cmd.Type {
	case TypeStep:
		s.sess.Step()
	case TypeToggle:
		if s.sess.ToggleRunning() {
			timer.Reset()
		}
	case TypeReset:
		s.sess.Reset(cmd.Seed)
	case TypePaint:
		if cmd.State != nil {
			if err := s.sess.SetPaintState(*cmd.State); err != nil {
				return err
			}
		}
		if !s.sess.Paint(cmd.Row, cmd.Col) {
			return fmt.Errorf("paint: cell (%d,%d) out of bounds", cmd.Row, cmd.Col)
		}
	case TypeSelect:
		if cmd.State == nil {
			return errors.New("select: missing state")
		}
		return s.sess.SetPaintState(*cmd.State)
	case TypeSpeed:
		s.sess.SetSpeed(float64(cmd.Speed))
	case TypeNbhd:
		nb, err := core.ParseNeighborhood(cmd.Name)
		if err != nil {
			return err
		}
		s.sess.SetNeighborhood(nb)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}

func (s *Server) broadcast(clients map[*client]struct{}) {
	if len(clients) == 0 {
		return
	}
	b, err := json.Marshal(snapshot(s.sess))
	if err != nil {
		s.log.Error("encode frame", "err", err)
		return
	}
	for c := range clients {
		s.enqueue(c, b)
	}
}

func (s *Server) send(c *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode message", "err", err)
		return
	}
	s.enqueue(c, b)
}

// enqueue drops the message when the client's outbox is full; the next frame
// supersedes it.
func (s *Server) enqueue(c *client, b []byte) {
	select {
	case c.out <- b:
	default:
		s.log.Debug("live client lagging, frame dropped")
	}
}

// Handler upgrades the request and pumps frames and commands until the
// connection closes.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{out: make(chan []byte, outboxSize)}
		select {
		case s.register <- c:
		case <-s.closed:
			return
		case <-r.Context().Done():
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range c.out {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					conn.Close()
					return
				}
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cmd Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				s.log.Debug("live command rejected", "err", err)
				continue
			}
			select {
			case s.requests <- request{from: c, cmd: cmd}:
			case <-s.closed:
			}
		}

		select {
		case s.unregister <- c:
			<-done
		case <-s.closed:
		}
	}
}

// Mux returns a handler serving the websocket at /ws and the viewer page
// at /.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Handler())
	mux.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(rw, r)
			return
		}
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write(indexHTML)
	})
	return mux
}
