package repositories

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	List(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error)
}
