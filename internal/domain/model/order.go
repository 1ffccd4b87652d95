package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusDelivered
}

// 注文。Total / UserID / 明細は作成後に変更しない
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	UserID         int64           `gorm:"not null;index;uniqueIndex:ux_orders_user_idem"`
	DeliveryCrewID *int64          `gorm:"index"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Total          decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PlacedAt       time.Time       `gorm:"not null;index"`
	IdempotencyKey *string         `gorm:"type:varchar(255);uniqueIndex:ux_orders_user_idem"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime"`
}
