package repository

import (
	"context"
	"errors"

	"littlelemon/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	//新規ユーザー作成（username重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}

// ロール（グループ）の付与・確認。追加・削除はどちらも冪等
type RoleRepository interface {
	ListRoles(ctx context.Context, userID int64) ([]model.Role, error)
	HasRole(ctx context.Context, userID int64, role model.Role) (bool, error)
	AddRole(ctx context.Context, userID int64, role model.Role) error
	RemoveRole(ctx context.Context, userID int64, role model.Role) error
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
}
