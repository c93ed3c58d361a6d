package cache

import (
	"context"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

// NoopRoleCache is used when REDIS_URL is unset; every lookup misses.
type NoopRoleCache struct{}

var _ service.RoleCache = NoopRoleCache{}

func (NoopRoleCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NoopRoleCache) Set(context.Context, string, string) error { return nil }
