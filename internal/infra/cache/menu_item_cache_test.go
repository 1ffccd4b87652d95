package cache

import (
	"context"
	"testing"
	"time"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type menuRepoMock struct {
	mock.Mock
}

var _ repository.MenuItemRepository = (*menuRepoMock)(nil)

func (m *menuRepoMock) List(ctx context.Context, q repository.MenuItemQuery) ([]model.MenuItem, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.MenuItem), args.Get(1).(int64), args.Error(2)
}

func (m *menuRepoMock) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.MenuItem), args.Error(1)
}

func (m *menuRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64]model.MenuItem), args.Error(1)
}

func (m *menuRepoMock) Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(model.MenuItem), args.Error(1)
}

func (m *menuRepoMock) Update(ctx context.Context, item model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *menuRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// 誰も listen していないポートへ向ける
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestMenuItemCache_FallsBackToRepositoryWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	next := new(menuRepoMock)
	item := model.MenuItem{ID: 3, Title: "Bruschetta", Price: decimal.RequireFromString("5.00")}
	next.On("FindByID", ctx, int64(3)).Return(item, nil).Once()

	c := NewMenuItemCache(next, unreachableRedis(), time.Minute, zap.NewNop())

	got, err := c.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Bruschetta", got.Title)
	next.AssertExpectations(t)
}

func TestMenuItemCache_FindByIDsFallsBack(t *testing.T) {
	ctx := context.Background()
	next := new(menuRepoMock)
	next.On("FindByIDs", ctx, []int64{1, 2}).
		Return(map[int64]model.MenuItem{1: {ID: 1, Title: "Pasta"}}, nil).Once()

	c := NewMenuItemCache(next, unreachableRedis(), time.Minute, zap.NewNop())

	got, err := c.FindByIDs(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	next.AssertExpectations(t)
}

func TestMenuItemCache_NotFoundPassesThrough(t *testing.T) {
	ctx := context.Background()
	next := new(menuRepoMock)
	next.On("FindByID", ctx, int64(9)).Return(model.MenuItem{}, repository.ErrNotFound).Once()

	c := NewMenuItemCache(next, unreachableRedis(), time.Minute, zap.NewNop())

	_, err := c.FindByID(ctx, 9)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMenuItemCache_UpdateErrorSkipsEvict(t *testing.T) {
	ctx := context.Background()
	next := new(menuRepoMock)
	item := model.MenuItem{ID: 4}
	next.On("Update", ctx, item).Return(repository.ErrNotFound).Once()

	c := NewMenuItemCache(next, unreachableRedis(), time.Minute, zap.NewNop())

	assert.ErrorIs(t, c.Update(ctx, item), repository.ErrNotFound)
	next.AssertExpectations(t)
}

func TestMenuItemKey(t *testing.T) {
	assert.Equal(t, "menu_item:12", menuItemKey(12))
}
