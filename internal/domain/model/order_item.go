package model

import "github.com/shopspring/decimal"

// 注文明細。作成後は変更しない（メニューの価格変更の影響を受けない）
type OrderItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	OrderID    int64           `gorm:"not null;index"`
	MenuItemID int64           `gorm:"not null;index"`
	Name       string          `gorm:"type:varchar(255);not null"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	LinePrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}
