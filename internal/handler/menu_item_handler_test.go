package handler_test

import (
	"context"
	"net/http"
	"testing"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/handler"
	"littlelemon/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type menuServiceMock struct{ mock.Mock }

func (m *menuServiceMock) List(ctx context.Context, in usecase.MenuListInput) (usecase.MenuItemListOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(usecase.MenuItemListOutput), args.Error(1)
}

func (m *menuServiceMock) Get(ctx context.Context, id int64) (usecase.MenuItemOutput, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(usecase.MenuItemOutput), args.Error(1)
}

func (m *menuServiceMock) Create(ctx context.Context, in usecase.MenuItemInput) (usecase.MenuItemOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(usecase.MenuItemOutput), args.Error(1)
}

func (m *menuServiceMock) Update(ctx context.Context, id int64, in usecase.MenuItemInput) (usecase.MenuItemOutput, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(usecase.MenuItemOutput), args.Error(1)
}

func (m *menuServiceMock) Patch(ctx context.Context, id int64, in usecase.MenuItemPatch) (usecase.MenuItemOutput, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(usecase.MenuItemOutput), args.Error(1)
}

func (m *menuServiceMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type categoryServiceMock struct{ mock.Mock }

func (m *categoryServiceMock) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *categoryServiceMock) CreateCategory(ctx context.Context, in usecase.CategoryInput) (model.Category, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Category), args.Error(1)
}

func newMenuServer(uc *menuServiceMock) *testServer {
	s := newTestServer()
	handler.NewMenuItemHandler(uc).RegisterRoutes(s.e, s.guards)
	return s
}

func TestMenuItemHandler_ListIsPublic(t *testing.T) {
	uc := new(menuServiceMock)
	s := newMenuServer(uc)

	cat := int64(2)
	featured := true
	uc.On("List", mock.Anything, usecase.MenuListInput{
		Page: 1, Limit: 10, Search: "soup", Ordering: "-price", CategoryID: &cat, Featured: &featured,
	}).Return(usecase.MenuItemListOutput{Items: []usecase.MenuItemOutput{}, Page: 1, Limit: 10}, nil)

	rec := s.do(t, http.MethodGet, "/menu-items?page=1&limit=10&search=soup&ordering=-price&category=2&featured=true", "", 0)
	requireStatus(t, rec, http.StatusOK)
	uc.AssertExpectations(t)
}

func TestMenuItemHandler_ListBadQuery(t *testing.T) {
	uc := new(menuServiceMock)
	s := newMenuServer(uc)

	for _, q := range []string{"page=a", "limit=b", "category=c", "featured=maybe"} {
		rec := s.do(t, http.MethodGet, "/menu-items?"+q, "", 0)
		requireStatus(t, rec, http.StatusBadRequest)
	}
}

func TestMenuItemHandler_WritesNeedManager(t *testing.T) {
	uc := new(menuServiceMock)
	s := newMenuServer(uc)
	body := `{"title":"Soup","price":"5.50","category_id":1}`

	rec := s.do(t, http.MethodPost, "/menu-items", body, 0)
	requireStatus(t, rec, http.StatusUnauthorized)

	for _, id := range []int64{customerID, crewID} {
		rec = s.do(t, http.MethodPost, "/menu-items", body, id)
		requireStatus(t, rec, http.StatusForbidden)
	}
	rec = s.do(t, http.MethodDelete, "/menu-items/1", "", customerID)
	requireStatus(t, rec, http.StatusForbidden)

	uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	uc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestMenuItemHandler_Create(t *testing.T) {
	uc := new(menuServiceMock)
	s := newMenuServer(uc)

	uc.On("Create", mock.Anything, usecase.MenuItemInput{Title: "Soup", Price: "5.5", Featured: true, CategoryID: 1}).
		Return(usecase.MenuItemOutput{ID: 7, Title: "Soup", Price: "5.50", Featured: true, CategoryID: 1}, nil)

	// 数値のpriceも受ける
	rec := s.do(t, http.MethodPost, "/menu-items", `{"title":"Soup","price":5.5,"featured":true,"category_id":1}`, managerID)
	requireStatus(t, rec, http.StatusCreated)
	assert.JSONEq(t, `{"id":7,"title":"Soup","price":"5.50","featured":true,"category_id":1}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/menu-items", `{"title":"Soup"}`, adminID)
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "price, category_id is required")
}

func TestMenuItemHandler_PutAndPatch(t *testing.T) {
	uc := new(menuServiceMock)
	s := newMenuServer(uc)

	uc.On("Update", mock.Anything, int64(7), usecase.MenuItemInput{Title: "Stew", Price: "6.00", CategoryID: 2}).
		Return(usecase.MenuItemOutput{ID: 7}, nil)
	price := "4.25"
	uc.On("Patch", mock.Anything, int64(7), usecase.MenuItemPatch{Price: &price}).
		Return(usecase.MenuItemOutput{ID: 7}, nil)

	rec := s.do(t, http.MethodPut, "/menu-items/7", `{"title":"Stew","price":"6.00","category_id":2}`, managerID)
	requireStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPatch, "/menu-items/7", `{"price":"4.25"}`, managerID)
	requireStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPatch, "/menu-items/7", `{"price":true}`, managerID)
	requireStatus(t, rec, http.StatusBadRequest)

	uc.AssertExpectations(t)
}

func TestMenuItemHandler_DetailAndDelete(t *testing.T) {
	uc := new(menuServiceMock)
	s := newMenuServer(uc)

	uc.On("Get", mock.Anything, int64(404)).Return(usecase.MenuItemOutput{}, usecase.NewError(usecase.KindNotFound, "menu item not found"))
	uc.On("Delete", mock.Anything, int64(7)).Return(nil)

	rec := s.do(t, http.MethodGet, "/menu-items/404", "", 0)
	requireStatus(t, rec, http.StatusNotFound)

	rec = s.do(t, http.MethodDelete, "/menu-items/7", "", adminID)
	requireStatus(t, rec, http.StatusNoContent)
}

func TestCategoryHandler(t *testing.T) {
	uc := new(categoryServiceMock)
	s := newTestServer()
	handler.NewCategoryHandler(uc).RegisterRoutes(s.e, s.guards)

	uc.On("ListCategories", mock.Anything).Return(nil, nil)
	uc.On("CreateCategory", mock.Anything, usecase.CategoryInput{Slug: "mains", Title: "Mains"}).
		Return(model.Category{ID: 1, Slug: "mains", Title: "Mains"}, nil)

	rec := s.do(t, http.MethodGet, "/categories", "", 0)
	requireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/categories", `{"slug":"mains","title":"Mains"}`, customerID)
	requireStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodPost, "/categories", `{"slug":"mains","title":"Mains"}`, managerID)
	requireStatus(t, rec, http.StatusCreated)

	rec = s.do(t, http.MethodPost, "/categories", `{"slug":"mains"}`, managerID)
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "title is required")
}
