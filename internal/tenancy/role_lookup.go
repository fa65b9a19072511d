package tenancy

import (
	"context"
	"errors"
	"fmt"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/repository"

	"go.uber.org/zap"
)

// RoleLookup fetches a user's role within a tenant. Like TenantLookup it is
// total: misses, errors, panics and unknown role strings yield RoleNone.
type RoleLookup struct {
	members repository.MembershipsRepository
	logger  *zap.Logger
}

func NewRoleLookup(members repository.MembershipsRepository, logger *zap.Logger) *RoleLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleLookup{members: members, logger: logger}
}

func (l *RoleLookup) FetchRole(ctx context.Context, tenantID, userID string) (role domain.Role) {
	if tenantID == "" || userID == "" || l.members == nil {
		return domain.RoleNone
	}

	log := l.logger.With(zap.String("tenant_id", tenantID), zap.String("user_id", userID))
	defer func() {
		if p := recover(); p != nil {
			log.Warn("role lookup panicked", zap.String("panic", fmt.Sprint(p)))
			role = domain.RoleNone
		}
	}()

	stored, err := l.members.GetMemberRole(ctx, tenantID, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn("role lookup failed", zap.Error(err))
		}
		return domain.RoleNone
	}

	role = domain.ParseRole(stored)
	if role == domain.RoleNone && stored != "" {
		log.Warn("unknown membership role", zap.String("role", stored))
	}
	return role
}
