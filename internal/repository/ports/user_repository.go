package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username string, passwordHash, passwordSalt []byte) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, username string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}
