package repository

import (
	"Kanban/internal/entity"
)

type ConnectionRegistry interface {
	Register(conn entity.Connection, boardID int64, userID int64) (entity.Connection, bool)
	Unregister(boardID int64, userID int64) bool
	Release(boardID int64, userID int64, conn entity.Connection) bool
	Leave(boardID int64, userID int64, conn entity.Connection) bool

	Lookup(boardID int64, userID int64) (entity.Connection, bool)
	UsersOnBoard(boardID int64) []int64
	BoardsForUser(userID int64) []int64
	BoardRecipients(boardID int64) []entity.Recipient
	UserRecipients(userID int64) []entity.Recipient

	Stats() entity.RegistryStats
	CloseAll(code int, reason string)
}

type Broadcaster interface {
	BroadcastToBoard(event entity.Event, boardID int64, exclude ...int64) (entity.DeliveryReport, error)
	SendToUser(event entity.Event, userID int64) (entity.DeliveryReport, error)
	SendToUsers(event entity.Event, userIDs []int64) (entity.DeliveryReport, error)
}
