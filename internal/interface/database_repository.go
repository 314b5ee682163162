package repository

import (
	"context"

	"Kanban/internal/entity"
)

type UserRepository interface {
	FindUserByID(ctx context.Context, userID int64) (entity.User, error)
}
