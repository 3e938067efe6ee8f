// Package permission enforces workspace permissions with casbin. Users are
// linked to role and group subjects inside a workspace domain; role baselines
// live in the "*" domain so they apply to every workspace.
package permission

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const anyDomain = "*"

const modelText = `
[request_definition]
r = sub, dom, obj

[policy_definition]
p = sub, dom, obj

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.dom == "*" || r.dom == p.dom) && r.obj == p.obj
`

var _ permission.Enforcer = (*Enforcer)(nil)

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

var DefaultCacheConfig = CacheConfig{Size: 4096, TTL: 5 * time.Minute}

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	cache    *expirable.LRU[string, bool]
	logger   logger.Interface

	// notify is called with the workspace SID after a local policy change.
	notify func(workspaceSID string)
}

// SetChangeNotifier registers fn to be told about local policy changes, so
// other instances can reload.
func (e *Enforcer) SetChangeNotifier(fn func(workspaceSID string)) {
	e.mu.Lock()
	e.notify = fn
	e.mu.Unlock()
}

// callers hold e.mu.
func (e *Enforcer) changed(workspaceSID string) {
	if e.notify != nil {
		go e.notify(workspaceSID)
	}
}

// NewEnforcer loads policies from the casbin_rule table (created if missing)
// and makes sure the role baselines are present.
func NewEnforcer(db *gorm.DB, cacheCfg CacheConfig, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)

	if cacheCfg.Size <= 0 {
		cacheCfg = DefaultCacheConfig
	}

	e := &Enforcer{
		enforcer: enforcer,
		cache:    expirable.NewLRU[string, bool](cacheCfg.Size, nil, cacheCfg.TTL),
		logger:   log,
	}
	if err := e.SyncBaseline(); err != nil {
		return nil, err
	}
	return e, nil
}

// SyncBaseline reconciles the "*" domain role policies with permission.Baseline.
func (e *Enforcer) SyncBaseline() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	var added, removed int
	for _, role := range permission.Roles() {
		subject := permission.RoleSubject(role)
		want := make(map[string]struct{})
		for _, p := range permission.Baseline(role) {
			want[p] = struct{}{}
		}

		existing, err := e.enforcer.GetFilteredPolicy(0, subject, anyDomain)
		if err != nil {
			return fmt.Errorf("failed to read baseline for %s: %w", role, err)
		}
		for _, rule := range existing {
			if _, ok := want[rule[2]]; ok {
				delete(want, rule[2])
				continue
			}
			if _, err := e.enforcer.RemovePolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to remove stale baseline policy: %w", err)
			}
			removed++
		}
		for p := range want {
			if _, err := e.enforcer.AddPolicy(subject, anyDomain, p); err != nil {
				e.logger.Errorw("failed to add baseline policy", "error", err, "role", role, "permission", p)
				return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", subject, anyDomain, p, err)
			}
			added++
		}
	}

	if added > 0 || removed > 0 {
		e.logger.Infow("role baseline policies synced", "added", added, "removed", removed)
	}
	return nil
}

func cacheKey(userSID, workspaceSID, perm string) string {
	return userSID + "|" + workspaceSID + "|" + perm
}

func (e *Enforcer) Enforce(userSID, workspaceSID, perm string) (bool, error) {
	key := cacheKey(userSID, workspaceSID, perm)
	if allowed, ok := e.cache.Get(key); ok {
		return allowed, nil
	}

	// The decision is cached under the read lock: writers purge while holding
	// the write lock, so nothing computed before a change lands after its purge.
	e.mu.RLock()
	defer e.mu.RUnlock()
	allowed, err := e.enforcer.Enforce(userSID, workspaceSID, perm)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "user_sid", userSID, "workspace_sid", workspaceSID, "permission", perm)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	e.cache.Add(key, allowed)
	return allowed, nil
}

// Permissions returns every catalog permission the user holds in the workspace, sorted.
func (e *Enforcer) Permissions(userSID, workspaceSID string) ([]string, error) {
	var out []string
	for _, p := range permission.Catalog() {
		ok, err := e.Enforce(userSID, workspaceSID, p.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p.ID)
		}
	}
	return permission.NormalizeIDs(out)
}

func (e *Enforcer) SetMemberRole(_ context.Context, userSID, workspaceSID string, role workspace.Role) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	if err := e.removeLinksWithPrefix(userSID, workspaceSID, "role:"); err != nil {
		return err
	}
	if _, err := e.enforcer.AddRoleForUserInDomain(userSID, permission.RoleSubject(role), workspaceSID); err != nil {
		e.logger.Errorw("failed to add role for member", "error", err, "user_sid", userSID, "workspace_sid", workspaceSID, "role", role)
		return fmt.Errorf("failed to add role for member: %w", err)
	}
	e.changed(workspaceSID)
	return nil
}

func (e *Enforcer) SetMemberGroup(_ context.Context, userSID, workspaceSID string, groupSID *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	if err := e.removeLinksWithPrefix(userSID, workspaceSID, "group:"); err != nil {
		return err
	}
	if groupSID == nil {
		e.changed(workspaceSID)
		return nil
	}
	if _, err := e.enforcer.AddRoleForUserInDomain(userSID, permission.GroupSubject(*groupSID), workspaceSID); err != nil {
		e.logger.Errorw("failed to link member to group", "error", err, "user_sid", userSID, "group_sid", *groupSID)
		return fmt.Errorf("failed to link member to group: %w", err)
	}
	e.changed(workspaceSID)
	return nil
}

func (e *Enforcer) RemoveMember(_ context.Context, userSID, workspaceSID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	if _, err := e.enforcer.RemoveFilteredGroupingPolicy(0, userSID, "", workspaceSID); err != nil {
		return fmt.Errorf("failed to remove member grants: %w", err)
	}
	e.changed(workspaceSID)
	return nil
}

func (e *Enforcer) SetGroupPermissions(_ context.Context, workspaceSID, groupSID string, permissions []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	subject := permission.GroupSubject(groupSID)
	if _, err := e.enforcer.RemoveFilteredPolicy(0, subject, workspaceSID); err != nil {
		return fmt.Errorf("failed to clear group policies: %w", err)
	}
	for _, p := range permissions {
		if _, err := e.enforcer.AddPolicy(subject, workspaceSID, p); err != nil {
			e.logger.Errorw("failed to add group policy", "error", err, "group_sid", groupSID, "permission", p)
			return fmt.Errorf("failed to add group policy: %w", err)
		}
	}
	e.changed(workspaceSID)
	return nil
}

func (e *Enforcer) RemoveGroup(_ context.Context, workspaceSID, groupSID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	subject := permission.GroupSubject(groupSID)
	if _, err := e.enforcer.RemoveFilteredPolicy(0, subject, workspaceSID); err != nil {
		return fmt.Errorf("failed to remove group policies: %w", err)
	}
	if _, err := e.enforcer.RemoveFilteredGroupingPolicy(1, subject, workspaceSID); err != nil {
		return fmt.Errorf("failed to unlink group members: %w", err)
	}
	e.changed(workspaceSID)
	return nil
}

func (e *Enforcer) RemoveWorkspace(_ context.Context, workspaceSID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	if _, err := e.enforcer.RemoveFilteredGroupingPolicy(2, workspaceSID); err != nil {
		return fmt.Errorf("failed to remove workspace links: %w", err)
	}
	if _, err := e.enforcer.RemoveFilteredPolicy(1, workspaceSID); err != nil {
		return fmt.Errorf("failed to remove workspace policies: %w", err)
	}
	e.logger.Infow("workspace grants removed", "workspace_sid", workspaceSID)
	e.changed(workspaceSID)
	return nil
}

// LoadPolicy reloads all rules from the database.
func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.cache.Purge()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	e.logger.Info("policy reloaded successfully")
	return nil
}

// callers hold e.mu.
func (e *Enforcer) removeLinksWithPrefix(userSID, workspaceSID, prefix string) error {
	links, err := e.enforcer.GetFilteredGroupingPolicy(0, userSID, "", workspaceSID)
	if err != nil {
		return fmt.Errorf("failed to read member links: %w", err)
	}
	for _, link := range links {
		if !strings.HasPrefix(link[1], prefix) {
			continue
		}
		if _, err := e.enforcer.RemoveGroupingPolicy(link[0], link[1], link[2]); err != nil {
			return fmt.Errorf("failed to remove member link: %w", err)
		}
	}
	return nil
}
