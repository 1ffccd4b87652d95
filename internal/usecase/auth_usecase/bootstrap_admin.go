package auth

import (
	"context"
	"errors"
	"strings"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/repository"
)

type BootstrapAdminInput struct {
	Username string
	Password string
	Email    string
}

// 起動時に管理者を用意する。何度実行しても同じ状態になる
type BootstrapAdminUsecase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	hasher   PasswordHasher
	clock    Clock
}

func NewBootstrapAdminUsecase(userRepo repository.UserRepository, roleRepo repository.RoleRepository, hasher PasswordHasher, clock Clock) *BootstrapAdminUsecase {
	return &BootstrapAdminUsecase{userRepo: userRepo, roleRepo: roleRepo, hasher: hasher, clock: clock}
}

// createdは新しくユーザーを作ったときtrue。既存ユーザーのパスワードは変えない
func (u *BootstrapAdminUsecase) Execute(ctx context.Context, in BootstrapAdminInput) (created bool, err error) {
	username := strings.TrimSpace(in.Username)
	if !isValidUsername(username) {
		return false, ErrInvalidUsername
	}
	if len(in.Password) < minPasswordLength {
		return false, ErrPasswordTooShort
	}

	user, err := u.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	if user == nil {
		hashed, err := u.hasher.Hash(in.Password)
		if err != nil {
			return false, err
		}
		now := u.clock.Now()
		user = &model.User{
			Username:     username,
			Email:        strings.TrimSpace(in.Email),
			PasswordHash: hashed,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return false, err
		}
		created = true
	}

	if err := u.roleRepo.AddRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return created, err
	}
	return created, nil
}
