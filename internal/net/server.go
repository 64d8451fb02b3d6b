package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/civgym/gym/internal/config"
	"github.com/civgym/gym/internal/gym"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server exposes one environment over websocket at /env. The environment
// is single-threaded, so only one agent may be connected at a time.
type Server struct {
	env      *gym.Env
	cfg      config.ServerConfig
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex // serialises env access
	busy   atomic.Bool
	nextID atomic.Uint64

	httpSrv  *http.Server
	listener net.Listener
}

func NewServer(env *gym.Env, cfg config.ServerConfig, log *zap.Logger) *Server {
	s := &Server{
		env: env,
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.httpSrv = &http.Server{Handler: s.Handler()}
	return s
}

// Handler returns the HTTP handler serving the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/env", s.handleEnv)
	return mux
}

func (s *Server) handleEnv(w http.ResponseWriter, r *http.Request) {
	compress := false
	switch r.URL.Query().Get("compress") {
	case "":
	case "zstd":
		if !s.cfg.Compression {
			http.Error(w, "compression disabled", http.StatusBadRequest)
			return
		}
		compress = true
	default:
		http.Error(w, "unsupported compression", http.StatusBadRequest)
		return
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.log.Warn("rejecting second agent connection", zap.String("ip", r.RemoteAddr))
		http.Error(w, "environment already in use", http.StatusConflict)
		return
	}
	defer s.busy.Store(false)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	if s.cfg.MaxMessage > 0 {
		conn.SetReadLimit(s.cfg.MaxMessage)
	}

	sess := newSession(s, conn, s.nextID.Add(1), compress)
	s.log.Info("agent connected", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP), zap.Bool("zstd", compress))
	sess.run()
	s.log.Info("agent disconnected", zap.Uint64("session", sess.ID))
}

func (s *Server) dispatch(sess *Session, req Request) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := Response{Type: req.Type}
	var err error
	switch req.Type {
	case TypeNewGame:
		err = s.env.NewGame(*req.Config)
		if err == nil {
			sess.log.Info("new game", zap.Uint32("seed", s.env.Seed()))
		}
	case TypeObserve:
		if err = s.env.GetObservation(&sess.obs); err == nil {
			resp.Observation = &sess.obs
		}
	case TypeValidActions:
		if err = s.env.GetValidActions(&sess.mask); err == nil {
			resp.Mask = &sess.mask
			resp.Legal = gym.LegalActions(&sess.mask)
		}
	case TypeStep:
		res := s.env.Step(*req.Action)
		resp.Result = &res
	case TypeCatalog:
		if !s.env.Running() {
			err = gym.ErrNoGame
		} else {
			c := s.env.Catalog()
			resp.Catalog = &c
		}
	case TypeReset:
		err = s.env.Reset()
	default:
		err = fmt.Errorf("unknown request type %q", req.Type)
		resp.Status = StatusBadRequest
		resp.Error = err.Error()
		return resp
	}
	resp.Status = gym.Status(err)
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.BindAddress, err)
	}
	s.listener = ln
	return nil
}

// Serve blocks until Shutdown. Call Listen first.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("net: Serve before Listen")
	}
	s.log.Info("listening", zap.String("addr", s.listener.Addr().String()))
	if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for handlers up to ctx.
// Hijacked websocket connections are not tracked by net/http, so they are
// cut off when the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
