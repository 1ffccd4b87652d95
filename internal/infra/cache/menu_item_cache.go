package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MenuItemCache はMenuItemRepositoryの前にRedisを挟む。
// 1件取得だけキャッシュし、書き込み時に該当キーを消す。
// Redisが落ちていてもDBで答える。
type MenuItemCache struct {
	next   repository.MenuItemRepository
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ repository.MenuItemRepository = (*MenuItemCache)(nil)

func NewMenuItemCache(next repository.MenuItemRepository, client *redis.Client, ttl time.Duration, log *zap.Logger) *MenuItemCache {
	return &MenuItemCache{next: next, client: client, ttl: ttl, log: log}
}

func menuItemKey(id int64) string {
	return fmt.Sprintf("menu_item:%d", id)
}

func (c *MenuItemCache) List(ctx context.Context, q repository.MenuItemQuery) ([]model.MenuItem, int64, error) {
	return c.next.List(ctx, q)
}

func (c *MenuItemCache) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	data, err := c.client.Get(ctx, menuItemKey(id)).Bytes()
	if err == nil {
		var m model.MenuItem
		if err := json.Unmarshal(data, &m); err == nil {
			return m, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("menu cache get failed", zap.Int64("menu_item_id", id), zap.Error(err))
	}

	m, err := c.next.FindByID(ctx, id)
	if err != nil {
		return model.MenuItem{}, err
	}
	c.store(ctx, m)
	return m, nil
}

func (c *MenuItemCache) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	out := make(map[int64]model.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = menuItemKey(id)
	}

	missing := ids
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("menu cache mget failed", zap.Error(err))
	} else {
		missing = make([]int64, 0, len(ids))
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var m model.MenuItem
			if err := json.Unmarshal([]byte(s), &m); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[m.ID] = m
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.next.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, m := range found {
		out[id] = m
		c.store(ctx, m)
	}
	return out, nil
}

func (c *MenuItemCache) Create(ctx context.Context, m model.MenuItem) (model.MenuItem, error) {
	return c.next.Create(ctx, m)
}

func (c *MenuItemCache) Update(ctx context.Context, m model.MenuItem) error {
	if err := c.next.Update(ctx, m); err != nil {
		return err
	}
	c.evict(ctx, m.ID)
	return nil
}

func (c *MenuItemCache) Delete(ctx context.Context, id int64) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *MenuItemCache) store(ctx context.Context, m model.MenuItem) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, menuItemKey(m.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("menu cache set failed", zap.Int64("menu_item_id", m.ID), zap.Error(err))
	}
}

// 消し損ねてもTTLで切れる
func (c *MenuItemCache) evict(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, menuItemKey(id)).Err(); err != nil {
		c.log.Warn("menu cache evict failed", zap.Int64("menu_item_id", id), zap.Error(err))
	}
}
