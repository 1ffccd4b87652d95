package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxIdemKeyLength = 255
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	menu  repo.MenuItemRepository
	roles repo.RoleRepository
	clock Clock
}

func NewOrderUsecase(tx repo.TransactionManager, menu repo.MenuItemRepository, roles repo.RoleRepository, clock Clock) *OrderUsecase {
	return &OrderUsecase{tx: tx, menu: menu, roles: roles, clock: clock}
}

// 注文の可視範囲。一覧/詳細/更新/削除すべてこれを通す
func ScopeFor(caller model.Caller) repo.OrderScope {
	if caller.IsAdminOr(model.RoleManager) {
		return repo.AllOrders()
	}
	return repo.OwnOrders(caller.UserID)
}

// カートを注文に変える。createdがfalseなら冪等キーで既存注文を返した
func (u *OrderUsecase) Checkout(ctx context.Context, caller model.Caller, idempotencyKey string) (out OrderOutput, created bool, err error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, false, NewError(KindUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(idempotencyKey)
	if len(key) > maxIdemKeyLength {
		return OrderOutput{}, false, NewError(KindInvalidInput, "idempotency key too long")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, caller.UserID, key)
			if err != nil {
				return internalError(err)
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return internalError(err)
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		// 行ロック。同じユーザーの同時チェックアウトはここで待つ
		lines, err := r.CartItems().LockByUserID(ctx, caller.UserID)
		if err != nil {
			return fromRepoError(err, "cart not found")
		}
		if len(lines) == 0 {
			// 同じキーの注文がロック待ちの間にコミットされていれば、それを返す
			if key != "" {
				existing, found, err := r.Orders().FindByIdempotencyKey(ctx, caller.UserID, key)
				if err != nil {
					return internalError(err)
				}
				if found {
					items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
					if err != nil {
						return internalError(err)
					}
					out = toOrderOutput(existing, items)
					return nil
				}
			}
			return NewError(KindInvalidState, "nothing to order")
		}

		menuIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			menuIDs = append(menuIDs, l.MenuItemID)
		}
		menu, err := u.menu.FindByIDs(ctx, menuIDs)
		if err != nil {
			return internalError(err)
		}

		items := make([]model.OrderItem, 0, len(lines))
		prices := make([]decimal.Decimal, 0, len(lines))
		lineIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			m, ok := menu[l.MenuItemID]
			if !ok {
				return NewError(KindInvalidState, fmt.Sprintf("menu item %d is no longer available", l.MenuItemID))
			}
			//スナップショット
			items = append(items, model.OrderItem{
				MenuItemID: l.MenuItemID,
				Name:       m.Title,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice,
				LinePrice:  l.LinePrice,
			})
			prices = append(prices, l.LinePrice)
			lineIDs = append(lineIDs, l.ID)
		}

		total := model.SumLinePrices(prices...)
		if !model.AmountFits(total) {
			return NewError(KindInvalidInput, "order total out of range")
		}

		order := model.Order{
			UserID:   caller.UserID,
			Status:   model.OrderStatusPending,
			Total:    total,
			PlacedAt: u.clock.Now(),
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		order, err = r.Orders().Create(ctx, order)
		if err != nil {
			// 同じキーで同時に作られた。再送すれば既存注文が返る
			return fromRepoError(err, "order not found")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return fromRepoError(err, "order not found")
		}

		// ロックした行だけ消す（後から入った行は次の注文へ）
		if err := r.CartItems().DeleteByIDs(ctx, lineIDs); err != nil {
			return fromRepoError(err, "cart not found")
		}

		out = toOrderOutput(order, items)
		created = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, false, fromRepoError(err, "not found")
	}
	return out, created, nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context, caller model.Caller, page int, limit int) (OrderListOutput, error) {
	if caller.UserID <= 0 {
		return OrderListOutput{}, NewError(KindUnauthorized, "unauthorized")
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return OrderListOutput{}, err
	}

	var out OrderListOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, ScopeFor(caller), page, limit)
		if err != nil {
			return internalError(err)
		}

		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return internalError(err)
		}

		out = OrderListOutput{
			Items: make([]OrderOutput, 0, len(orders)),
			Total: total,
			Page:  page,
			Limit: limit,
		}
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o, itemsByOrder[o.ID]))
		}
		return nil
	})
	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, caller model.Caller, orderID int64) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewError(KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewError(KindInvalidInput, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//スコープ外は「存在しない扱い」
		o, err := r.Orders().FindInScope(ctx, ScopeFor(caller), orderID)
		if err != nil {
			return fromRepoError(err, "order not found")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return internalError(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文更新の入力。キーがあったものだけ反映する
type UpdateOrderInput struct {
	Status *model.OrderStatus
	// trueならDeliveryCrewIDで上書き（nilで解除）
	SetDeliveryCrew bool
	DeliveryCrewID  *int64
}

// 作成後に変えられない項目
var immutableOrderFields = map[string]bool{
	"id":          true,
	"user":        true,
	"user_id":     true,
	"total":       true,
	"date":        true,
	"placed_at":   true,
	"order_items": true,
}

// リクエストボディ（JSONオブジェクト）をUpdateOrderInputにする
func ParseOrderUpdate(body map[string]json.RawMessage) (UpdateOrderInput, error) {
	var in UpdateOrderInput
	if len(body) == 0 {
		return in, NewError(KindInvalidInput, "nothing to update")
	}

	for field, raw := range body {
		switch field {
		case "status":
			s, err := parseOrderStatus(raw)
			if err != nil {
				return UpdateOrderInput{}, err
			}
			in.Status = &s
		case "delivery_crew":
			var id *int64
			if err := json.Unmarshal(raw, &id); err != nil {
				return UpdateOrderInput{}, NewError(KindInvalidInput, "delivery_crew must be a user id or null")
			}
			if id != nil && *id <= 0 {
				return UpdateOrderInput{}, NewError(KindInvalidInput, "delivery_crew must be a user id or null")
			}
			in.SetDeliveryCrew = true
			in.DeliveryCrewID = id
		default:
			if immutableOrderFields[field] {
				return UpdateOrderInput{}, NewError(KindInvalidInput, fmt.Sprintf("%s cannot be changed", field))
			}
			return UpdateOrderInput{}, NewError(KindInvalidInput, fmt.Sprintf("unknown field %s", field))
		}
	}
	return in, nil
}

// "PENDING"/"DELIVERED"、または旧形式の真偽値（true=配達済み）
func parseOrderStatus(raw json.RawMessage) (model.OrderStatus, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		st := model.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
		if !st.Valid() {
			return "", NewError(KindInvalidInput, "invalid status")
		}
		return st, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return model.OrderStatusDelivered, nil
		}
		return model.OrderStatusPending, nil
	}
	return "", NewError(KindInvalidInput, "invalid status")
}

type orderAuditState struct {
	Status       model.OrderStatus `json:"status"`
	DeliveryCrew *int64            `json:"delivery_crew"`
}

func (u *OrderUsecase) UpdateOrder(ctx context.Context, caller model.Caller, orderID int64, in UpdateOrderInput) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewError(KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewError(KindInvalidInput, "invalid id")
	}
	if in.Status == nil && !in.SetDeliveryCrew {
		return OrderOutput{}, NewError(KindInvalidInput, "nothing to update")
	}
	if in.Status != nil && !in.Status.Valid() {
		return OrderOutput{}, NewError(KindInvalidInput, "invalid status")
	}

	//配達担当の割り当てはManager（またはAdmin）だけ
	if in.SetDeliveryCrew {
		if !caller.IsAdminOr(model.RoleManager) {
			return OrderOutput{}, NewError(KindForbidden, "only managers can assign delivery crew")
		}
		if in.DeliveryCrewID != nil {
			ok, err := u.roles.HasRole(ctx, *in.DeliveryCrewID, model.RoleDeliveryCrew)
			if err != nil {
				return OrderOutput{}, internalError(err)
			}
			if !ok {
				return OrderOutput{}, NewError(KindInvalidInput, "assignee is not delivery crew")
			}
		}
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindInScopeForUpdate(ctx, ScopeFor(caller), orderID)
		if err != nil {
			return fromRepoError(err, "order not found")
		}

		before := orderAuditState{Status: o.Status, DeliveryCrew: o.DeliveryCrewID}

		changes := repo.OrderChanges{
			Status:          in.Status,
			SetDeliveryCrew: in.SetDeliveryCrew,
			DeliveryCrewID:  in.DeliveryCrewID,
		}
		if err := r.Orders().Update(ctx, o.ID, changes); err != nil {
			return fromRepoError(err, "order not found")
		}

		if in.Status != nil {
			o.Status = *in.Status
		}
		if in.SetDeliveryCrew {
			o.DeliveryCrewID = in.DeliveryCrewID
		}
		after := orderAuditState{Status: o.Status, DeliveryCrew: o.DeliveryCrewID}

		if err := writeOrderAudit(ctx, r, caller.UserID, model.AuditActionUpdateOrder, o.ID, before, after, u.clock); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return internalError(err)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, fromRepoError(err, "order not found")
	}
	return out, nil
}

// 注文と明細をまとめて消す
func (u *OrderUsecase) DeleteOrder(ctx context.Context, caller model.Caller, orderID int64) error {
	if caller.UserID <= 0 {
		return NewError(KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewError(KindInvalidInput, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindInScopeForUpdate(ctx, ScopeFor(caller), orderID)
		if err != nil {
			return fromRepoError(err, "order not found")
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
			return internalError(err)
		}
		if err := r.Orders().Delete(ctx, o.ID); err != nil {
			return fromRepoError(err, "order not found")
		}

		before := orderAuditState{Status: o.Status, DeliveryCrew: o.DeliveryCrewID}
		return writeOrderAudit(ctx, r, caller.UserID, model.AuditActionDeleteOrder, o.ID, before, nil, u.clock)
	})
	return fromRepoError(err, "order not found")
}

func writeOrderAudit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, orderID int64, before any, after any, clock Clock) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return internalError(err)
	}
	afterJSON := ""
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			return internalError(err)
		}
		afterJSON = string(b)
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    afterJSON,
		CreatedAt:    clock.Now(),
	}); err != nil {
		return internalError(err)
	}
	return nil
}

// page/limitの最低限チェック（0は既定値）
func normalizePage(page int, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if page < 1 {
		return 0, 0, NewError(KindInvalidInput, "invalid page")
	}
	if limit < 1 || limit > maxPageLimit {
		return 0, 0, NewError(KindInvalidInput, "invalid limit")
	}
	return page, limit, nil
}
