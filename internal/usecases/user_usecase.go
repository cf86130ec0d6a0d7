package usecases

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserUsecase holds admin operations on user accounts
type UserUsecase struct {
	userRepo repositories.UserRepository
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(userRepo repositories.UserRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo}
}

// List lists users, optionally filtered by an email or name search
func (u *UserUsecase) List(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	return u.userRepo.List(ctx, search, pagination)
}

// SetBlocked sets the vendor block flag. Blocked accounts drop out of every
// marketplace listing but can still sign in and download their purchases.
func (u *UserUsecase) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*entities.User, error) {
	if err := u.userRepo.SetBlocked(ctx, id, blocked); err != nil {
		return nil, err
	}
	logger.Info(ctx, "User block flag changed", zap.String("user_id", id.String()), zap.Bool("blocked", blocked))
	return u.userRepo.GetByID(ctx, id)
}
