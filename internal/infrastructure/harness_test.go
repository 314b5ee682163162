package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Kanban/internal/entity"
	"Kanban/internal/usecase"
)

const testInternalKey = "internal-key"

type memoryUsers map[int64]entity.User

func (m memoryUsers) FindUserByID(_ context.Context, id int64) (entity.User, error) {
	u, ok := m[id]
	if !ok {
		return entity.User{}, entity.ErrUserNotFound
	}
	return u, nil
}

type harness struct {
	server   *httptest.Server
	registry *usecase.Registry
	tokens   *TokenService
	cancel   context.CancelFunc
}

func newHarness(t *testing.T, cfg *Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 5 * time.Second
	}

	logger := zap.NewNop()
	tokens, err := NewTokenService("s3cret", "HS256")
	if err != nil {
		t.Fatal(err)
	}

	registry := usecase.NewRegistry()
	broadcast := &usecase.BroadcastUseCase{Registry: registry, Logger: logger}
	sessions := &usecase.SessionUseCase{Registry: registry, Broadcaster: broadcast, Logger: logger}
	gate := &usecase.SessionGateUseCase{
		Credentials: tokens,
		Users: memoryUsers{
			1: {ID: 1, Username: "alice"},
			2: {ID: 2, Username: "bob"},
		},
	}
	ingress := &IngressHandler{
		APIKey:   testInternalKey,
		Notifier: &usecase.NotifierUseCase{Broadcaster: broadcast},
		Logger:   logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	ws := NewWebSocketHandler(ctx, cfg, gate, sessions, logger)
	server := httptest.NewServer(NewRouter(ws, registry, ingress, logger))

	t.Cleanup(func() {
		cancel()
		registry.CloseAll(entity.CloseGoingAway, "test over")
		server.Close()
	})

	return &harness{server: server, registry: registry, tokens: tokens, cancel: cancel}
}

func (h *harness) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + path
}

func (h *harness) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := h.tokens.Issue(userID, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// join dials board boardID as userID and waits for the server to register it.
func (h *harness) join(t *testing.T, boardID, userID int64) *websocket.Conn {
	t.Helper()
	path := "/ws/" + strconv.FormatInt(boardID, 10) + "?token=" + h.token(t, userID)
	conn, _, err := websocket.DefaultDialer.Dial(h.wsURL(path), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := h.registry.Lookup(boardID, userID); ok {
			return conn
		}
		if time.Now().After(deadline) {
			t.Fatalf("user %d never registered on board %d", userID, boardID)
		}
		time.Sleep(time.Millisecond)
	}
}

type clientEvent struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	BoardID *int64          `json:"board_id"`
	UserID  *int64          `json:"user_id"`
}

func readEvent(t *testing.T, conn *websocket.Conn) clientEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev clientEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		t.Fatalf("frame %s: %v", frame, err)
	}
	return ev
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, frame, err := conn.ReadMessage()
		if err == nil {
			t.Logf("skipping frame %s", frame)
			continue
		}
		if !websocket.IsCloseError(err, code) {
			t.Fatalf("read err = %v, want close %d", err, code)
		}
		return
	}
}

func postJSON(t *testing.T, url, key, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(internalKeyHeader, key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}
