package repository

import (
	"context"

	"littlelemon/internal/domain/model"
)

// 注文の可視範囲。UserIDがnilなら全件
type OrderScope struct {
	UserID *int64
}

func AllOrders() OrderScope {
	return OrderScope{}
}

func OwnOrders(userID int64) OrderScope {
	return OrderScope{UserID: &userID}
}

func (s OrderScope) IsAll() bool {
	return s.UserID == nil
}

// 作成後に変えてよい項目だけ
type OrderChanges struct {
	Status *model.OrderStatus
	// trueならDeliveryCrewIDで上書き（nilで解除）
	SetDeliveryCrew bool
	DeliveryCrewID  *int64
}

func (c OrderChanges) IsEmpty() bool {
	return c.Status == nil && !c.SetDeliveryCrew
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindInScope(ctx context.Context, scope OrderScope, orderID int64) (model.Order, error)
	// 行ロック付き
	FindInScopeForUpdate(ctx context.Context, scope OrderScope, orderID int64) (model.Order, error)
	List(ctx context.Context, scope OrderScope, page int, limit int) ([]model.Order, int64, error)
	Update(ctx context.Context, orderID int64, changes OrderChanges) error
	Delete(ctx context.Context, orderID int64) error

	//同じキーなら同じ注文を返す
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
