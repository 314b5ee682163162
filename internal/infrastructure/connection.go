package infrastructure

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"Kanban/internal/entity"
)

const closeGracePeriod = time.Second

var errConnectionClosed = errors.New("connection closed")

// wsConnection adapts a gorilla connection to entity.Connection. gorilla
// allows one concurrent writer, so Send is serialized; Close and WriteControl
// may run alongside it.
type wsConnection struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration
	idleTimeout  time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// NewConnection wraps conn. With a non-zero idleTimeout the server pings the
// peer at half that interval and every pong extends the read deadline, so a
// client that only listens stays connected.
func NewConnection(conn *websocket.Conn, writeTimeout, idleTimeout time.Duration) entity.Connection {
	c := &wsConnection{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
		idleTimeout:  idleTimeout,
		closed:       make(chan struct{}),
	}

	if idleTimeout > 0 {
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(idleTimeout))
		})
		go c.keepAlive(idleTimeout / 2)
	}
	return c
}

func (c *wsConnection) keepAlive(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(closeGracePeriod)); err != nil {
				return
			}
		}
	}
}

func (c *wsConnection) ID() string {
	return c.id
}

func (c *wsConnection) Send(frame []byte) error {
	select {
	case <-c.closed:
		return errConnectionClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *wsConnection) Receive() ([]byte, entity.ConnState, error) {
	if c.idleTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
			return nil, entity.ConnClosed, err
		}
	}

	_, payload, err := c.conn.ReadMessage()
	if err == nil {
		return payload, entity.ConnOpen, nil
	}

	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return nil, entity.ConnClosed, nil
	}

	select {
	case <-c.closed:
		return nil, entity.ConnClosed, nil
	default:
		return nil, entity.ConnClosed, err
	}
}

func (c *wsConnection) Close(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		err = c.conn.Close()
	})
	return err
}
