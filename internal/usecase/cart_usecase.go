package usecase

import (
	"context"
	"fmt"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartItems repo.CartItemRepository
	menu      repo.MenuItemRepository
}

func NewCartUsecase(cartItems repo.CartItemRepository, menu repo.MenuItemRepository) *CartUsecase {
	return &CartUsecase{cartItems: cartItems, menu: menu}
}

// unit_price は追加時点の価格
type CartLineOutput struct {
	UserID     int64  `json:"user_id"`
	MenuItemID int64  `json:"menuitem"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Price      string `json:"price"`
}

// 1明細あたりの数量上限
const MaxCartQuantity = 1000

type AddCartLineInput struct {
	MenuItemID int64
	Quantity   int64
}

// 同じメニューを再度追加したら数量・価格を上書きする
func (u *CartUsecase) AddLine(ctx context.Context, userID int64, in AddCartLineInput) (CartLineOutput, error) {
	if userID <= 0 {
		return CartLineOutput{}, NewError(KindUnauthorized, "unauthorized")
	}
	if in.MenuItemID <= 0 {
		return CartLineOutput{}, NewError(KindInvalidInput, "invalid menuitem")
	}
	if in.Quantity <= 0 {
		return CartLineOutput{}, NewError(KindInvalidInput, "quantity must be positive")
	}
	if in.Quantity > MaxCartQuantity {
		return CartLineOutput{}, NewError(KindInvalidInput, fmt.Sprintf("quantity must be at most %d", MaxCartQuantity))
	}

	m, err := u.menu.FindByID(ctx, in.MenuItemID)
	if err != nil {
		return CartLineOutput{}, fromRepoError(err, "menu item not found")
	}

	linePrice := model.LinePrice(in.Quantity, m.Price)
	if !model.AmountFits(linePrice) {
		return CartLineOutput{}, NewError(KindInvalidInput, "line price out of range")
	}

	line, err := u.cartItems.Upsert(ctx, model.CartItem{
		UserID:     userID,
		MenuItemID: m.ID,
		Quantity:   in.Quantity,
		UnitPrice:  m.Price,
		LinePrice:  linePrice,
	})
	if err != nil {
		return CartLineOutput{}, fromRepoError(err, "menu item not found")
	}

	return toCartLineOutput(line, m.Title), nil
}

func (u *CartUsecase) ListLines(ctx context.Context, userID int64) ([]CartLineOutput, error) {
	if userID <= 0 {
		return []CartLineOutput{}, NewError(KindUnauthorized, "unauthorized")
	}

	lines, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return []CartLineOutput{}, internalError(err)
	}
	if len(lines) == 0 {
		return []CartLineOutput{}, nil
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	menu, err := u.menu.FindByIDs(ctx, ids)
	if err != nil {
		return []CartLineOutput{}, internalError(err)
	}

	out := make([]CartLineOutput, 0, len(lines))
	for _, l := range lines {
		// 削除済みメニューは名前なしで返す
		out = append(out, toCartLineOutput(l, menu[l.MenuItemID].Title))
	}
	return out, nil
}

// 空でもエラーにしない
func (u *CartUsecase) ClearLines(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewError(KindUnauthorized, "unauthorized")
	}
	if err := u.cartItems.DeleteByUserID(ctx, userID); err != nil {
		return internalError(err)
	}
	return nil
}

func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, menuItemID int64) error {
	if userID <= 0 {
		return NewError(KindUnauthorized, "unauthorized")
	}
	if menuItemID <= 0 {
		return NewError(KindInvalidInput, "invalid menuitem")
	}
	if err := u.cartItems.DeleteByUserAndMenuItem(ctx, userID, menuItemID); err != nil {
		return fromRepoError(err, "cart line not found")
	}
	return nil
}

func toCartLineOutput(l model.CartItem, name string) CartLineOutput {
	return CartLineOutput{
		UserID:     l.UserID,
		MenuItemID: l.MenuItemID,
		Name:       name,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice.StringFixed(2),
		Price:      l.LinePrice.StringFixed(2),
	}
}
