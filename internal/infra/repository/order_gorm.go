package repository

import (
	"context"
	"errors"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// スコープ外は存在しないのと同じに扱う
func scoped(q *gorm.DB, scope repo.OrderScope) *gorm.DB {
	if scope.IsAll() {
		return q
	}
	return q.Where("user_id = ?", *scope.UserID)
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, translatePgError(err)
	}
	return order, nil
}

func (r *OrderGormRepository) FindInScope(ctx context.Context, scope repo.OrderScope, orderID int64) (model.Order, error) {
	var o model.Order
	err := scoped(r.db.WithContext(ctx), scope).
		Where("id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindInScopeForUpdate(ctx context.Context, scope repo.OrderScope, orderID int64) (model.Order, error) {
	var o model.Order
	err := scoped(r.db.WithContext(ctx), scope).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, translatePgError(err)
	}
	return o, nil
}

// id昇順。ページを跨いでも順序が崩れない
func (r *OrderGormRepository) List(ctx context.Context, scope repo.OrderScope, page int, limit int) ([]model.Order, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := scoped(r.db.WithContext(ctx).Model(&model.Order{}), scope).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := scoped(r.db.WithContext(ctx), scope).
		Order("id asc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) Update(ctx context.Context, orderID int64, changes repo.OrderChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	values := map[string]any{}
	if changes.Status != nil {
		values["status"] = *changes.Status
	}
	if changes.SetDeliveryCrew {
		values["delivery_crew_id"] = changes.DeliveryCrewID
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(values)

	if res.Error != nil {
		return translatePgError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)

	if res.Error != nil {
		return translatePgError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}
