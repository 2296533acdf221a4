// Package authz holds the role hierarchy and permission tables used by the
// authorization middleware. The tables are built once at startup and injected;
// nothing in this package is mutable after construction.
package authz

import "strings"

type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Permission is a closed set of capability constants. The role table below is
// the single source of truth for which role holds which permission; free-form
// strings are rejected by ParsePermission.
type Permission string

const (
	PermVideoCreate    Permission = "video:create"
	PermVideoUpdateOwn Permission = "video:update:own"
	PermVideoDeleteOwn Permission = "video:delete:own"
	PermVideoDeleteAny Permission = "video:delete:any"
	PermVideoApprove   Permission = "video:approve"
	PermUserList       Permission = "user:list"
	PermUserDelete     Permission = "user:delete"
	PermUserRoleChange Permission = "user:role:change"

	// PermAll is the SuperAdmin wildcard. It never appears in any other
	// role's permission set.
	PermAll Permission = "*"
)

var allPermissions = []Permission{
	PermVideoCreate,
	PermVideoUpdateOwn,
	PermVideoDeleteOwn,
	PermVideoDeleteAny,
	PermVideoApprove,
	PermUserList,
	PermUserDelete,
	PermUserRoleChange,
}

// Config is the immutable role table: an ordered ranking plus a permission
// set per role.
type Config struct {
	ranks map[Role]int
	perms map[Role]map[Permission]struct{}
}

func New(ranks map[Role]int, perms map[Role][]Permission) *Config {
	cfg := &Config{
		ranks: make(map[Role]int, len(ranks)),
		perms: make(map[Role]map[Permission]struct{}, len(perms)),
	}

	for role, rank := range ranks {
		cfg.ranks[role] = rank
	}

	for role, set := range perms {
		byPerm := make(map[Permission]struct{}, len(set))
		for _, p := range set {
			byPerm[p] = struct{}{}
		}
		cfg.perms[role] = byPerm
	}

	return cfg
}

// Default returns the platform role table: Student < Teacher < Admin <
// SuperAdmin, with SuperAdmin holding the wildcard.
func Default() *Config {
	return New(
		map[Role]int{
			RoleStudent:    1,
			RoleTeacher:    2,
			RoleAdmin:      3,
			RoleSuperAdmin: 4,
		},
		map[Role][]Permission{
			RoleStudent: {
				PermVideoCreate,
				PermVideoUpdateOwn,
				PermVideoDeleteOwn,
			},
			RoleTeacher: {
				PermVideoCreate,
				PermVideoUpdateOwn,
				PermVideoDeleteOwn,
				PermVideoApprove,
			},
			RoleAdmin: {
				PermVideoCreate,
				PermVideoUpdateOwn,
				PermVideoDeleteOwn,
				PermVideoDeleteAny,
				PermVideoApprove,
				PermUserList,
				PermUserDelete,
			},
			RoleSuperAdmin: {
				PermAll,
			},
		},
	)
}

// Rank returns the hierarchy rank of a role, 0 for unknown roles so they
// never satisfy any check.
func (c *Config) Rank(role Role) int {
	return c.ranks[role]
}

func (c *Config) Known(role Role) bool {
	_, ok := c.ranks[role]
	return ok
}

// AtLeast reports whether role ranks at or above required in the hierarchy.
func (c *Config) AtLeast(role Role, required Role) bool {
	rank, ok := c.ranks[role]
	if !ok {
		return false
	}
	req, ok := c.ranks[required]
	if !ok {
		return false
	}
	return rank >= req
}

// HasPermission reports whether a role holds a permission, honoring the
// wildcard entry.
func (c *Config) HasPermission(role Role, permission Permission) bool {
	set, ok := c.perms[role]
	if !ok {
		return false
	}
	if _, ok := set[PermAll]; ok {
		return true
	}
	_, ok = set[permission]
	return ok
}

// Admin reports whether the role bypasses ownership checks.
func (c *Config) Admin(role Role) bool {
	return c.AtLeast(role, RoleAdmin)
}

// ParseRole normalizes and validates a role string from external input.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin:
		return role, true
	}
	return "", false
}

// ParsePermission validates a permission string against the closed set.
func ParsePermission(raw string) (Permission, bool) {
	p := Permission(strings.TrimSpace(raw))
	for _, known := range allPermissions {
		if p == known {
			return p, true
		}
	}
	return "", false
}
