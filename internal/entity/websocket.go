package entity

import (
	"github.com/gorilla/websocket"
)

const (
	CloseNormal          = websocket.CloseNormalClosure
	CloseGoingAway       = websocket.CloseGoingAway
	CloseInvalidPayload  = websocket.CloseInvalidFramePayloadData
	ClosePolicyViolation = websocket.ClosePolicyViolation
)

type ConnState int

const (
	ConnOpen ConnState = iota
	ConnClosed
)

func (s ConnState) String() string {
	if s == ConnOpen {
		return "open"
	}
	return "closed"
}

// Connection is a duplex text-frame channel to one client.
//
// Receive blocks until the next frame arrives. Once it reports ConnClosed the
// channel is finished; the accompanying error, if any, only describes why.
// Close must be safe to call more than once and concurrently with Send.
type Connection interface {
	ID() string
	Send(frame []byte) error
	Receive() ([]byte, ConnState, error)
	Close(code int, reason string) error
}

type Recipient struct {
	BoardID int64
	UserID  int64
	Conn    Connection
}

type RegistryStats struct {
	Boards      int `json:"boards"`
	Users       int `json:"users"`
	Connections int `json:"connections"`
}
