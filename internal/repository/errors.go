package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
	// 直列化失敗・デッドロック・ロック取得失敗。クライアント側で再試行する
	ErrConflict = errors.New("conflict")
	// 数値がカラムの範囲外
	ErrOutOfRange = errors.New("value out of range")
)
