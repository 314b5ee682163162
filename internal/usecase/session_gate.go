package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Kanban/internal/entity"
	repository "Kanban/internal/interface"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnknownUser       = errors.New("unknown user")
)

// SessionGateUseCase performs the one-time admission check for a realtime
// connection. Nothing re-authenticates the connection afterwards.
type SessionGateUseCase struct {
	Credentials repository.CredentialVerifier
	Users       repository.UserRepository
}

func (uc *SessionGateUseCase) Admit(ctx context.Context, token string) (entity.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entity.User{}, ErrMissingCredential
	}

	userID, err := uc.Credentials.Verify(token)
	if err != nil {
		return entity.User{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	user, err := uc.Users.FindUserByID(ctx, userID)
	if errors.Is(err, entity.ErrUserNotFound) {
		return entity.User{}, fmt.Errorf("%w: id %d", ErrUnknownUser, userID)
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	return user, nil
}
