package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"Kanban/internal/entity"
	"Kanban/internal/queries"
)

type DB struct {
	*sql.DB
}

func NewDatabaseConnection(ctx context.Context, cfg *Config) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// FindUserByID returns the active user with the given id, or
// entity.ErrUserNotFound.
func (db *DB) FindUserByID(
	ctx context.Context,
	userID int64,
) (entity.User, error) {
	var user entity.User

	err := db.QueryRowContext(ctx, queries.FindActiveUserQuery, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.IsAdmin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, entity.ErrUserNotFound
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}

	return user, nil
}
