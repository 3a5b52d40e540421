// Package cache holds the redis-backed read paths: the role-default
// permission cache and the revoked-token denylist.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const roleDefaultsPrefix = "role_defaults:"

// RoleDefaults is a read-through cache in front of a RoleDefaultsRepository.
// Writes go to the database first and then drop the cached entry. Any redis
// failure falls back to the database.
type RoleDefaults struct {
	repo repository.RoleDefaultsRepository
	rdb  *redis.Client
	ttl  time.Duration
}

var _ repository.RoleDefaultsRepository = (*RoleDefaults)(nil)

// NewRoleDefaults wraps repo. A nil rdb disables caching.
func NewRoleDefaults(repo repository.RoleDefaultsRepository, rdb *redis.Client, ttl time.Duration) *RoleDefaults {
	return &RoleDefaults{repo: repo, rdb: rdb, ttl: ttl}
}

func (c *RoleDefaults) Get(ctx context.Context, role string) ([]string, error) {
	key := roleDefaultsPrefix + role
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
			var perms []string
			if jsonErr := json.Unmarshal(cached, &perms); jsonErr == nil {
				return perms, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("role", role).Msg("role defaults cache read failed")
		}
	}

	perms, err := c.repo.Get(ctx, role)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if b, jsonErr := json.Marshal(perms); jsonErr == nil {
			_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
		}
	}
	return perms, nil
}

func (c *RoleDefaults) Set(ctx context.Context, role string, permissions []string) error {
	if err := c.repo.Set(ctx, role, permissions); err != nil {
		return err
	}
	c.invalidate(ctx, role)
	return nil
}

func (c *RoleDefaults) List(ctx context.Context) ([]model.RoleDefaultPermissions, error) {
	return c.repo.List(ctx)
}

func (c *RoleDefaults) Count(ctx context.Context) (int64, error) {
	return c.repo.Count(ctx)
}

func (c *RoleDefaults) invalidate(ctx context.Context, role string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, roleDefaultsPrefix+role).Err(); err != nil {
		log.Warn().Err(err).Str("role", role).Msg("role defaults cache invalidation failed")
	}
}
