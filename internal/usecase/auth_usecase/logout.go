package auth

import (
	"context"
	"errors"

	"littlelemon/internal/repository"
)

// 全端末ログアウト。token_versionを上げて発行済みトークンを無効にする
type LogoutAllUsecase struct {
	userRepo repository.UserRepository
}

func NewLogoutAllUsecase(userRepo repository.UserRepository) *LogoutAllUsecase {
	return &LogoutAllUsecase{userRepo: userRepo}
}

func (u *LogoutAllUsecase) Execute(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidCredentials
	}
	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}
