package net

import (
	"errors"
	"time"

	"github.com/civgym/gym/internal/gym"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Session is one agent connection. It owns the observation and mask
// buffers it hands to the environment, so they are reused across requests.
type Session struct {
	ID       uint64
	IP       string
	conn     *websocket.Conn
	srv      *Server
	compress bool

	obs  gym.Observation
	mask gym.ActionMask

	log *zap.Logger
}

func newSession(srv *Server, conn *websocket.Conn, id uint64, compress bool) *Session {
	return &Session{
		ID:       id,
		IP:       conn.RemoteAddr().String(),
		conn:     conn,
		srv:      srv,
		compress: compress,
		obs:      gym.Observation{Winner: -1},
		log:      srv.log.With(zap.Uint64("session", id)),
	}
}

// run serves requests until the peer closes or a read fails.
func (s *Session) run() {
	defer s.close()
	for {
		if s.srv.cfg.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.srv.cfg.ReadTimeout))
		}
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) && (ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway) {
				s.log.Debug("session closed by peer")
			} else {
				s.log.Info("session read ended", zap.Error(err))
			}
			return
		}

		var resp Response
		req, err := DecodeRequest(msg)
		if err != nil {
			resp = Response{Type: req.Type, Status: StatusBadRequest, Error: err.Error()}
		} else {
			resp = s.srv.dispatch(s, req)
		}
		if err := s.send(resp); err != nil {
			s.log.Info("session write failed", zap.Error(err))
			return
		}
	}
}

func (s *Session) send(resp Response) error {
	mt, data, err := EncodeFrame(resp, s.compress)
	if err != nil {
		return err
	}
	if s.srv.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout))
	}
	return s.conn.WriteMessage(mt, data)
}

func (s *Session) close() {
	s.obs.Release()
	s.mask.Release()
	_ = s.conn.Close()
}
