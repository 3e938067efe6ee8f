package access

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/permission"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

// Guard resolves membership and checks a catalog permission in one step.
type Guard struct {
	resolver *Resolver
	enforcer permission.Enforcer
}

func NewGuard(resolver *Resolver, enforcer permission.Enforcer) *Guard {
	return &Guard{resolver: resolver, enforcer: enforcer}
}

// Require fails with not found for non-members and forbidden for members
// lacking perm.
func (g *Guard) Require(ctx context.Context, actor Actor, workspaceSID, perm string) (*Access, error) {
	acc, err := g.resolver.Resolve(ctx, workspaceSID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := g.Check(actor, workspaceSID, perm); err != nil {
		return nil, err
	}
	return acc, nil
}

// Resolve returns the caller's membership without a permission check, for
// operations whose rule depends on the target.
func (g *Guard) Resolve(ctx context.Context, actor Actor, workspaceSID string) (*Access, error) {
	return g.resolver.Resolve(ctx, workspaceSID, actor.ID)
}

// Check enforces perm for a caller whose membership is already resolved.
func (g *Guard) Check(actor Actor, workspaceSID, perm string) error {
	allowed, err := g.enforcer.Enforce(actor.SID, workspaceSID, perm)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !allowed {
		return apperrors.NewForbiddenError(permission.ErrPermissionDenied.Error(), perm)
	}
	return nil
}
