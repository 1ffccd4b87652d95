package repository

import (
	"context"
	"errors"
	"strings"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"

	"gorm.io/gorm"
)

type MenuItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewMenuItemGormRepository(db *gorm.DB) *MenuItemGormRepository {
	return &MenuItemGormRepository{db: db}
}

// 検索/カテゴリ/おすすめ/並び順/ページング付きで返す。
func (r *MenuItemGormRepository) List(ctx context.Context, q repo.MenuItemQuery) ([]model.MenuItem, int64, error) {
	var items []model.MenuItem
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.MenuItem{})

	// titleの部分一致
	if s := strings.TrimSpace(q.Search); s != "" {
		tx = tx.Where("title ILIKE ?", "%"+s+"%")
	}
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if q.Featured != nil {
		tx = tx.Where("featured = ?", *q.Featured)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.MenuItem{}, 0, err
	}

	//sort
	switch q.Ordering {
	case "price":
		tx = tx.Order("price asc").Order("id asc")
	case "-price":
		tx = tx.Order("price desc").Order("id desc")
	case "title":
		tx = tx.Order("title asc").Order("id asc")
	case "-title":
		tx = tx.Order("title desc").Order("id desc")
	default:
		tx = tx.Order("id asc")
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	if err := tx.Limit(limit).Offset((page - 1) * limit).Find(&items).Error; err != nil {
		return []model.MenuItem{}, 0, err
	}
	return items, total, nil
}

func (r *MenuItemGormRepository) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

// 見つからないIDはmapに入らない
func (r *MenuItemGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	out := make(map[int64]model.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []model.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, m := range items {
		out[m.ID] = m
	}
	return out, nil
}

func (r *MenuItemGormRepository) Create(ctx context.Context, m model.MenuItem) (model.MenuItem, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.MenuItem{}, translatePgError(err)
	}
	return m, nil
}

func (r *MenuItemGormRepository) Update(ctx context.Context, m model.MenuItem) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"title":       m.Title,
			"price":       m.Price,
			"featured":    m.Featured,
			"category_id": m.CategoryID,
		})
	if res.Error != nil {
		return translatePgError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MenuItemGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.MenuItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
