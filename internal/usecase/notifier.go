package usecase

import (
	"errors"
	"fmt"

	"Kanban/internal/entity"
	repository "Kanban/internal/interface"
)

var ErrEventScope = errors.New("event type not allowed in this scope")

// NotifierUseCase is the entry point for the CRUD layer: it is called after a
// mutation has been committed and turns it into envelopes.
type NotifierUseCase struct {
	Broadcaster repository.Broadcaster
}

// PublishBoardEvent tells every viewer of boardID about a change. The actor
// is skipped; its own request already returned the new state.
func (uc *NotifierUseCase) PublishBoardEvent(
	eventType entity.EventType,
	boardID int64,
	actorID int64,
	data any,
) (entity.DeliveryReport, error) {
	if eventType.Scope() != entity.ScopeBoard {
		return entity.DeliveryReport{}, fmt.Errorf("%w: %q is not board scoped", ErrEventScope, eventType)
	}

	event := entity.NewEvent(eventType, data, entity.WithBoard(boardID))
	if actorID == 0 {
		return uc.Broadcaster.BroadcastToBoard(event, boardID)
	}
	return uc.Broadcaster.BroadcastToBoard(event, boardID, actorID)
}

func (uc *NotifierUseCase) PublishUserEvent(
	eventType entity.EventType,
	userID int64,
	boardID int64,
	data any,
) (entity.DeliveryReport, error) {
	if eventType.Scope() != entity.ScopeUser {
		return entity.DeliveryReport{}, fmt.Errorf("%w: %q is not user scoped", ErrEventScope, eventType)
	}

	event := entity.NewEvent(eventType, data, entity.WithBoard(boardID))
	return uc.Broadcaster.SendToUser(event, userID)
}

func (uc *NotifierUseCase) NotifyTaskAssignment(
	taskID int64,
	assigneeID int64,
	assignedByID int64,
	boardID int64,
) (entity.DeliveryReport, error) {
	return uc.PublishUserEvent(entity.EventTaskAssigned, assigneeID, boardID, entity.TaskAssignment{
		TaskID:       taskID,
		AssigneeID:   assigneeID,
		AssignedByID: assignedByID,
	})
}

func (uc *NotifierUseCase) NotifyTaskMention(
	taskID int64,
	mentionedUserID int64,
	mentionedByID int64,
	boardID int64,
) (entity.DeliveryReport, error) {
	return uc.PublishUserEvent(entity.EventTaskMentioned, mentionedUserID, boardID, entity.TaskMention{
		TaskID:          taskID,
		MentionedUserID: mentionedUserID,
		MentionedByID:   mentionedByID,
	})
}

func (uc *NotifierUseCase) NotifyCommentMention(
	commentID int64,
	mentionedUserID int64,
	mentionedByID int64,
	boardID int64,
) (entity.DeliveryReport, error) {
	return uc.PublishUserEvent(entity.EventCommentMentioned, mentionedUserID, boardID, entity.CommentMention{
		CommentID:       commentID,
		MentionedUserID: mentionedUserID,
		MentionedByID:   mentionedByID,
	})
}
