package entity

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventBoardUpdated EventType = "board_updated"
	EventBoardDeleted EventType = "board_deleted"

	EventColumnCreated EventType = "column_created"
	EventColumnUpdated EventType = "column_updated"
	EventColumnDeleted EventType = "column_deleted"

	EventTaskCreated EventType = "task_created"
	EventTaskUpdated EventType = "task_updated"
	EventTaskDeleted EventType = "task_deleted"
	EventTaskMoved   EventType = "task_moved"

	EventCommentCreated EventType = "comment_created"
	EventCommentUpdated EventType = "comment_updated"
	EventCommentDeleted EventType = "comment_deleted"

	EventUserJoinedBoard EventType = "user_joined_board"
	EventUserLeftBoard   EventType = "user_left_board"

	EventTaskAssigned     EventType = "task_assigned"
	EventTaskMentioned    EventType = "task_mentioned"
	EventCommentMentioned EventType = "comment_mentioned"

	EventCursorMove EventType = "cursor_move"

	inboundPing EventType = "ping"
)

// Scope says who an event type is addressed to.
type Scope int

const (
	ScopeUnknown Scope = iota
	// ScopeBoard events go to every viewer of one board.
	ScopeBoard
	// ScopeUser events go to one user on every board they have open.
	ScopeUser
	// ScopeClient events originate from a connected client and are relayed
	// by the protocol loop only.
	ScopeClient
)

func (t EventType) Scope() Scope {
	switch t {
	case EventBoardUpdated, EventBoardDeleted,
		EventColumnCreated, EventColumnUpdated, EventColumnDeleted,
		EventTaskCreated, EventTaskUpdated, EventTaskDeleted, EventTaskMoved,
		EventCommentCreated, EventCommentUpdated, EventCommentDeleted,
		EventUserJoinedBoard, EventUserLeftBoard:
		return ScopeBoard
	case EventTaskAssigned, EventTaskMentioned, EventCommentMentioned:
		return ScopeUser
	case EventCursorMove:
		return ScopeClient
	default:
		return ScopeUnknown
	}
}

// Event is the envelope every outbound notification is wrapped in.
// BoardID and UserID are left off the wire when zero.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp float64   `json:"timestamp"`
	Data      any       `json:"data"`
	BoardID   int64     `json:"board_id,omitempty"`
	UserID    int64     `json:"user_id,omitempty"`
}

type EventOption func(*Event)

func WithBoard(boardID int64) EventOption {
	return func(e *Event) {
		e.BoardID = boardID
	}
}

func WithUser(userID int64) EventOption {
	return func(e *Event) {
		e.UserID = userID
	}
}

func WithTime(t time.Time) EventOption {
	return func(e *Event) {
		e.Timestamp = Timestamp(t)
	}
}

func NewEvent(eventType EventType, data any, opts ...EventOption) Event {
	if data == nil {
		data = emptyObject
	}
	event := Event{
		Type:      eventType,
		Timestamp: Timestamp(time.Now()),
		Data:      data,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Timestamp renders t as fractional unix seconds.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

type UserPresence struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	BoardID  int64  `json:"board_id"`
}

type TaskAssignment struct {
	TaskID       int64 `json:"task_id"`
	AssigneeID   int64 `json:"assignee_id"`
	AssignedByID int64 `json:"assigned_by_id"`
}

type TaskMention struct {
	TaskID          int64 `json:"task_id"`
	MentionedUserID int64 `json:"mentioned_user_id"`
	MentionedByID   int64 `json:"mentioned_by_id"`
}

type CommentMention struct {
	CommentID       int64 `json:"comment_id"`
	MentionedUserID int64 `json:"mentioned_user_id"`
	MentionedByID   int64 `json:"mentioned_by_id"`
}
