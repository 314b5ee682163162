package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"Kanban/internal/entity"
	repository "Kanban/internal/interface"
)

var ErrSessionStarted = errors.New("session already started")

type SessionState int32

const (
	StateAdmitted SessionState = iota
	StateConnected
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateAdmitted:
		return "admitted"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int32(s))
	}
}

type SessionUseCase struct {
	Registry    repository.ConnectionRegistry
	Broadcaster repository.Broadcaster
	Logger      *zap.Logger
}

// NewSession wraps an admitted connection. Nothing is registered until Serve.
func (uc *SessionUseCase) NewSession(
	conn entity.Connection,
	boardID int64,
	user entity.User,
) *Session {
	return &Session{
		conn:        conn,
		boardID:     boardID,
		user:        user,
		registry:    uc.Registry,
		broadcaster: uc.Broadcaster,
		logger: uc.Logger.With(
			zap.Int64("board_id", boardID),
			zap.Int64("user_id", user.ID),
			zap.String("conn_id", conn.ID()),
		),
	}
}

// Session pumps frames for one connection on one board.
type Session struct {
	conn        entity.Connection
	boardID     int64
	user        entity.User
	registry    repository.ConnectionRegistry
	broadcaster repository.Broadcaster
	logger      *zap.Logger
	state       atomic.Int32
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Serve registers the connection, announces the user to the board and reads
// frames until the connection closes. Cancelling ctx closes the connection.
// The returned error is nil for an ordinary disconnect.
func (s *Session) Serve(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateAdmitted), int32(StateConnected)) {
		return ErrSessionStarted
	}

	s.connect()

	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.Close(entity.CloseGoingAway, "server shutdown")
	})
	defer stop()

	err := s.pump()
	s.disconnect()
	return err
}

func (s *Session) connect() {
	previous, replaced := s.registry.Register(s.conn, s.boardID, s.user.ID)
	if replaced {
		s.logger.Info("closing superseded connection", zap.String("superseded_conn_id", previous.ID()))
		_ = previous.Close(entity.CloseGoingAway, "superseded")
	}

	s.logger.Info("user joined board")

	joined := entity.NewEvent(entity.EventUserJoinedBoard, s.presence(), entity.WithBoard(s.boardID))
	if _, err := s.broadcaster.BroadcastToBoard(joined, s.boardID, s.user.ID); err != nil {
		s.logger.Warn("announce join", zap.Error(err))
	}
}

func (s *Session) pump() error {
	for {
		frame, state, err := s.conn.Receive()
		if state == entity.ConnClosed {
			if err != nil {
				s.logger.Debug("connection closed", zap.Error(err))
			}
			return nil
		}

		msg, err := entity.DecodeInbound(frame)
		if err != nil {
			_ = s.conn.Close(entity.CloseInvalidPayload, "malformed frame")
			return err
		}

		switch m := msg.(type) {
		case entity.Ping:
			if err := s.conn.Send(entity.PongFrame); err != nil {
				return fmt.Errorf("send pong: %w", err)
			}
		case entity.CursorMove:
			event := entity.NewEvent(entity.EventCursorMove, m.Data, entity.WithBoard(s.boardID))
			if _, err := s.broadcaster.BroadcastToBoard(event, s.boardID, s.user.ID); err != nil {
				s.logger.Warn("relay cursor", zap.Error(err))
			}
		case entity.Unrecognized:
			s.logger.Debug("ignoring frame", zap.String("type", m.Type))
		}
	}
}

func (s *Session) disconnect() {
	s.state.Store(int32(StateClosed))

	vacant := s.registry.Leave(s.boardID, s.user.ID, s.conn)
	_ = s.conn.Close(entity.CloseNormal, "")

	// A newer connection for the same board took over; the user never left.
	if !vacant {
		s.logger.Info("superseded session ended")
		return
	}

	s.logger.Info("user left board")

	left := entity.NewEvent(entity.EventUserLeftBoard, s.presence(),
		entity.WithBoard(s.boardID),
		entity.WithUser(s.user.ID),
	)
	if _, err := s.broadcaster.BroadcastToBoard(left, s.boardID); err != nil {
		s.logger.Warn("announce departure", zap.Error(err))
	}
}

func (s *Session) presence() entity.UserPresence {
	return entity.UserPresence{
		UserID:   s.user.ID,
		Username: s.user.Username,
		BoardID:  s.boardID,
	}
}
