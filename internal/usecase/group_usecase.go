package usecase

import (
	"context"
	"errors"
	"strings"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"
)

// Manager / Delivery crew のメンバー管理
type GroupUsecase struct {
	users repo.UserRepository
	roles repo.RoleRepository
}

func NewGroupUsecase(users repo.UserRepository, roles repo.RoleRepository) *GroupUsecase {
	return &GroupUsecase{users: users, roles: roles}
}

type UserOutput struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserOutput(u model.User) UserOutput {
	return UserOutput{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (u *GroupUsecase) ListMembers(ctx context.Context, role model.Role) ([]UserOutput, error) {
	if !role.Valid() {
		return []UserOutput{}, NewError(KindNotFound, "group not found")
	}
	users, err := u.roles.ListUsersByRole(ctx, role)
	if err != nil {
		return []UserOutput{}, internalError(err)
	}
	out := make([]UserOutput, 0, len(users))
	for _, us := range users {
		out = append(out, toUserOutput(us))
	}
	return out, nil
}

// 既にメンバーでも成功
func (u *GroupUsecase) AddMember(ctx context.Context, role model.Role, username string) (UserOutput, error) {
	if !role.Valid() {
		return UserOutput{}, NewError(KindNotFound, "group not found")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return UserOutput{}, NewError(KindInvalidInput, "username is required")
	}

	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return UserOutput{}, fromRepoError(err, "user not found")
	}
	if err := u.roles.AddRole(ctx, user.ID, role); err != nil {
		return UserOutput{}, internalError(err)
	}
	return toUserOutput(*user), nil
}

// メンバーでなくても成功。ユーザー自体がいなければNOT_FOUND
func (u *GroupUsecase) RemoveMember(ctx context.Context, role model.Role, userID int64) error {
	if !role.Valid() {
		return NewError(KindNotFound, "group not found")
	}
	if userID <= 0 {
		return NewError(KindInvalidInput, "invalid id")
	}

	if _, err := u.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return NewError(KindNotFound, "user not found")
		}
		return internalError(err)
	}
	if err := u.roles.RemoveRole(ctx, userID, role); err != nil {
		return internalError(err)
	}
	return nil
}
