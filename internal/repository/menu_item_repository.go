package repository

import (
	"context"

	"littlelemon/internal/domain/model"
)

// 一覧検索
type MenuItemQuery struct {
	Page       int
	Limit      int
	Search     string
	CategoryID *int64
	Featured   *bool
	// price / -price / title / -title
	Ordering string
}

// メニュー（カタログ）の永続化
type MenuItemRepository interface {
	List(ctx context.Context, q MenuItemQuery) ([]model.MenuItem, int64, error)
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error)

	Create(ctx context.Context, m model.MenuItem) (model.MenuItem, error)
	Update(ctx context.Context, m model.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
}
