package usecase

import (
	"context"
	"errors"
	"strings"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"

	"github.com/shopspring/decimal"
)

// numeric(10,2)に収まる上限
var maxMenuPrice = model.MaxAmount

type MenuUsecase struct {
	items      repo.MenuItemRepository
	categories repo.CategoryRepository
}

func NewMenuUsecase(items repo.MenuItemRepository, categories repo.CategoryRepository) *MenuUsecase {
	return &MenuUsecase{items: items, categories: categories}
}

type MenuItemOutput struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	Featured   bool   `json:"featured"`
	CategoryID int64  `json:"category_id"`
}

type MenuItemListOutput struct {
	Items []MenuItemOutput `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type MenuListInput struct {
	Page       int
	Limit      int
	Search     string
	Ordering   string
	CategoryID *int64
	Featured   *bool
}

// PUT用（全項目）
type MenuItemInput struct {
	Title      string
	Price      string
	Featured   bool
	CategoryID int64
}

// PATCH用（nilは変更なし）
type MenuItemPatch struct {
	Title      *string
	Price      *string
	Featured   *bool
	CategoryID *int64
}

type CategoryInput struct {
	Slug  string
	Title string
}

var allowedOrderings = map[string]bool{
	"":       true,
	"price":  true,
	"-price": true,
	"title":  true,
	"-title": true,
}

func (u *MenuUsecase) List(ctx context.Context, in MenuListInput) (MenuItemListOutput, error) {
	page, limit, err := normalizePage(in.Page, in.Limit)
	if err != nil {
		return MenuItemListOutput{}, err
	}
	ordering := strings.TrimSpace(in.Ordering)
	if !allowedOrderings[ordering] {
		return MenuItemListOutput{}, NewError(KindInvalidInput, "invalid ordering")
	}

	items, total, err := u.items.List(ctx, repo.MenuItemQuery{
		Page:       page,
		Limit:      limit,
		Search:     in.Search,
		CategoryID: in.CategoryID,
		Featured:   in.Featured,
		Ordering:   ordering,
	})
	if err != nil {
		return MenuItemListOutput{}, internalError(err)
	}

	out := MenuItemListOutput{
		Items: make([]MenuItemOutput, 0, len(items)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, m := range items {
		out.Items = append(out.Items, toMenuItemOutput(m))
	}
	return out, nil
}

func (u *MenuUsecase) Get(ctx context.Context, id int64) (MenuItemOutput, error) {
	if id <= 0 {
		return MenuItemOutput{}, NewError(KindInvalidInput, "invalid id")
	}
	m, err := u.items.FindByID(ctx, id)
	if err != nil {
		return MenuItemOutput{}, fromRepoError(err, "menu item not found")
	}
	return toMenuItemOutput(m), nil
}

func (u *MenuUsecase) Create(ctx context.Context, in MenuItemInput) (MenuItemOutput, error) {
	m, err := u.buildMenuItem(ctx, model.MenuItem{}, MenuItemPatch{
		Title:      &in.Title,
		Price:      &in.Price,
		Featured:   &in.Featured,
		CategoryID: &in.CategoryID,
	})
	if err != nil {
		return MenuItemOutput{}, err
	}

	created, err := u.items.Create(ctx, m)
	if err != nil {
		return MenuItemOutput{}, fromRepoError(err, "menu item not found")
	}
	return toMenuItemOutput(created), nil
}

func (u *MenuUsecase) Update(ctx context.Context, id int64, in MenuItemInput) (MenuItemOutput, error) {
	return u.Patch(ctx, id, MenuItemPatch{
		Title:      &in.Title,
		Price:      &in.Price,
		Featured:   &in.Featured,
		CategoryID: &in.CategoryID,
	})
}

func (u *MenuUsecase) Patch(ctx context.Context, id int64, in MenuItemPatch) (MenuItemOutput, error) {
	if id <= 0 {
		return MenuItemOutput{}, NewError(KindInvalidInput, "invalid id")
	}

	current, err := u.items.FindByID(ctx, id)
	if err != nil {
		return MenuItemOutput{}, fromRepoError(err, "menu item not found")
	}

	m, err := u.buildMenuItem(ctx, current, in)
	if err != nil {
		return MenuItemOutput{}, err
	}

	if err := u.items.Update(ctx, m); err != nil {
		return MenuItemOutput{}, fromRepoError(err, "menu item not found")
	}
	return toMenuItemOutput(m), nil
}

// 既にカートに入っている分は追加時の価格のまま
func (u *MenuUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewError(KindInvalidInput, "invalid id")
	}
	if err := u.items.Delete(ctx, id); err != nil {
		return fromRepoError(err, "menu item not found")
	}
	return nil
}

func (u *MenuUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categories.List(ctx)
	if err != nil {
		return []model.Category{}, internalError(err)
	}
	return cs, nil
}

func (u *MenuUsecase) CreateCategory(ctx context.Context, in CategoryInput) (model.Category, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	title := strings.TrimSpace(in.Title)
	if slug == "" || title == "" {
		return model.Category{}, NewError(KindInvalidInput, "slug and title are required")
	}

	c, err := u.categories.Create(ctx, model.Category{Slug: slug, Title: title})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Category{}, NewError(KindConflict, "category slug already exists")
	}
	if err != nil {
		return model.Category{}, internalError(err)
	}
	return c, nil
}

// patchをbaseに当てて検証する
func (u *MenuUsecase) buildMenuItem(ctx context.Context, base model.MenuItem, in MenuItemPatch) (model.MenuItem, error) {
	m := base

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > 255 {
			return model.MenuItem{}, NewError(KindInvalidInput, "invalid title")
		}
		m.Title = title
	}

	if in.Price != nil {
		price, err := parsePrice(*in.Price)
		if err != nil {
			return model.MenuItem{}, err
		}
		m.Price = price
	}

	if in.Featured != nil {
		m.Featured = *in.Featured
	}

	if in.CategoryID != nil {
		if *in.CategoryID <= 0 {
			return model.MenuItem{}, NewError(KindInvalidInput, "invalid category")
		}
		if *in.CategoryID != base.CategoryID {
			if _, err := u.categories.FindByID(ctx, *in.CategoryID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return model.MenuItem{}, NewError(KindInvalidInput, "unknown category")
				}
				return model.MenuItem{}, internalError(err)
			}
		}
		m.CategoryID = *in.CategoryID
	}

	return m, nil
}

// 正の値・小数2桁まで
func parsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, NewError(KindInvalidInput, "invalid price")
	}
	if !p.IsPositive() || p.GreaterThanOrEqual(maxMenuPrice) {
		return decimal.Decimal{}, NewError(KindInvalidInput, "price out of range")
	}
	if !p.Equal(p.Round(2)) {
		return decimal.Decimal{}, NewError(KindInvalidInput, "price must have at most 2 decimal places")
	}
	return p, nil
}

func toMenuItemOutput(m model.MenuItem) MenuItemOutput {
	return MenuItemOutput{
		ID:         m.ID,
		Title:      m.Title,
		Price:      m.Price.StringFixed(2),
		Featured:   m.Featured,
		CategoryID: m.CategoryID,
	}
}
