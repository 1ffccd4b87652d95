package repository

import (
	"context"

	"littlelemon/internal/domain/model"
)

type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// SELECT ... FOR UPDATE。トランザクション内でのみ使う
	LockByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 同一メニューは上書き（数量・価格とも）
	Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error)
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteByIDs(ctx context.Context, ids []int64) error
	DeleteByUserAndMenuItem(ctx context.Context, userID int64, menuItemID int64) error
}
