package infrastructure

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Kanban/internal/entity"
	"Kanban/internal/usecase"
)

type WebSocketHandler struct {
	Upgrader     websocket.Upgrader
	Gate         *usecase.SessionGateUseCase
	Sessions     *usecase.SessionUseCase
	Logger       *zap.Logger
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// BaseContext bounds every session; cancelling it closes them all.
	BaseContext context.Context
}

func NewWebSocketHandler(
	ctx context.Context,
	cfg *Config,
	gate *usecase.SessionGateUseCase,
	sessions *usecase.SessionUseCase,
	logger *zap.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		Upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(cfg.AllowedOrigins),
		},
		Gate:         gate,
		Sessions:     sessions,
		Logger:       logger.Named("websocket"),
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  ctx,
	}
}

// ServeHTTP handles GET /ws/{board_id}?token=...
//
// Browsers cannot attach headers to the handshake, so the credential travels
// in the query string. A refused credential is reported with a 1008 close
// frame after the upgrade, which is the only channel the client can read.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.ParseInt(chi.URLParam(r, "board_id"), 10, 64)
	if err != nil || boardID <= 0 {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	ws := NewConnection(conn, h.WriteTimeout, h.IdleTimeout)

	user, err := h.Gate.Admit(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.Logger.Info("admission refused",
			zap.Int64("board_id", boardID),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		_ = ws.Close(entity.ClosePolicyViolation, "authentication failed")
		return
	}

	session := h.Sessions.NewSession(ws, boardID, user)
	if err := session.Serve(h.baseContext()); err != nil {
		h.Logger.Info("session ended with error",
			zap.Int64("board_id", boardID),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func (h *WebSocketHandler) baseContext() context.Context {
	if h.BaseContext == nil {
		return context.Background()
	}
	return h.BaseContext
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
