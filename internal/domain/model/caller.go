package model

// Callerは認証済みのリクエスト主体。
// ロールはトークンではなく、リクエストごとにDBから引いたもの。
type Caller struct {
	UserID int64
	Roles  []Role
}

func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Caller) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// Admin もしくは指定ロールのどれかを持つか
func (c Caller) IsAdminOr(roles ...Role) bool {
	if c.IsAdmin() {
		return true
	}
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}
