package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// 追加時点の価格（UnitPrice）を必ず保存。(user, menu_item)で一意
type CartItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	UserID     int64           `gorm:"not null;uniqueIndex:ux_cart_user_menu_item"`
	MenuItemID int64           `gorm:"not null;uniqueIndex:ux_cart_user_menu_item;index"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	LinePrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime"`
}
