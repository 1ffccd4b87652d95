package model

import "strings"

// スタッフ権限。user_rolesに1行ずつ持つ
type Role string

const (
	RoleManager      Role = "MANAGER"
	RoleDeliveryCrew Role = "DELIVERY_CREW"
	RoleAdmin        Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleDeliveryCrew, RoleAdmin:
		return true
	}
	return false
}

// URLのグループ名（manager / delivery-crew）からRoleへ
func RoleFromGroup(group string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(group)) {
	case "manager", "managers":
		return RoleManager, true
	case "delivery-crew", "delivery_crew", "delivery crew":
		return RoleDeliveryCrew, true
	}
	return "", false
}

// ユーザーとロールの対応
type UserRole struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`
	Role   Role  `gorm:"primaryKey;type:varchar(20)"`
}
