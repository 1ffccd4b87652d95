package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// メニュー。価格はカート追加時にスナップショットされる
type MenuItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	Title      string          `gorm:"type:varchar(255);not null;index"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null;index"`
	Featured   bool            `gorm:"not null;default:false;index"`
	CategoryID int64           `gorm:"not null;index"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime"`
}
