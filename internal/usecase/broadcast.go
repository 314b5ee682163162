package usecase

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"Kanban/internal/entity"
	repository "Kanban/internal/interface"
)

// BroadcastUseCase delivers envelopes to registered connections.
//
// Delivery is at most once. A failed send is logged, the recipient is
// released from the registry and its connection closed, and the fan-out
// carries on with the remaining recipients.
type BroadcastUseCase struct {
	Registry repository.ConnectionRegistry
	Logger   *zap.Logger
}

func (uc *BroadcastUseCase) BroadcastToBoard(
	event entity.Event,
	boardID int64,
	exclude ...int64,
) (entity.DeliveryReport, error) {
	frame, err := event.Encode()
	if err != nil {
		return entity.DeliveryReport{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	recipients := uc.Registry.BoardRecipients(boardID)
	recipients = slices.DeleteFunc(recipients, func(rc entity.Recipient) bool {
		return slices.Contains(exclude, rc.UserID)
	})

	return uc.deliver(event.Type, frame, recipients), nil
}

// SendToUser delivers to every board connection userID currently holds.
func (uc *BroadcastUseCase) SendToUser(
	event entity.Event,
	userID int64,
) (entity.DeliveryReport, error) {
	frame, err := event.Encode()
	if err != nil {
		return entity.DeliveryReport{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	return uc.deliver(event.Type, frame, uc.Registry.UserRecipients(userID)), nil
}

func (uc *BroadcastUseCase) SendToUsers(
	event entity.Event,
	userIDs []int64,
) (entity.DeliveryReport, error) {
	frame, err := event.Encode()
	if err != nil {
		return entity.DeliveryReport{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	var report entity.DeliveryReport
	for _, userID := range userIDs {
		report.Merge(uc.deliver(event.Type, frame, uc.Registry.UserRecipients(userID)))
	}
	return report, nil
}

func (uc *BroadcastUseCase) deliver(
	eventType entity.EventType,
	frame []byte,
	recipients []entity.Recipient,
) entity.DeliveryReport {
	var report entity.DeliveryReport

	for _, rc := range recipients {
		err := rc.Conn.Send(frame)
		if err != nil {
			uc.Logger.Warn("delivery failed",
				zap.String("event", string(eventType)),
				zap.Int64("board_id", rc.BoardID),
				zap.Int64("user_id", rc.UserID),
				zap.String("conn_id", rc.Conn.ID()),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, rc)
			continue
		}
		report.Delivered++
	}

	uc.reap(report.Failed)
	return report
}

func (uc *BroadcastUseCase) reap(failed []entity.Recipient) {
	for _, rc := range failed {
		if uc.Registry.Release(rc.BoardID, rc.UserID, rc.Conn) {
			_ = rc.Conn.Close(entity.CloseGoingAway, "delivery failed")
		}
	}
}
