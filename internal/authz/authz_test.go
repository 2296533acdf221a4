package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultHierarchyOrdering(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Rank(RoleStudent) < cfg.Rank(RoleTeacher))
	assert.True(t, cfg.Rank(RoleTeacher) < cfg.Rank(RoleAdmin))
	assert.True(t, cfg.Rank(RoleAdmin) < cfg.Rank(RoleSuperAdmin))
}

func TestAtLeastIsMonotonic(t *testing.T) {
	cfg := Default()
	ordered := []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleSuperAdmin}

	for i, required := range ordered {
		for j, role := range ordered {
			assert.Equal(t, j >= i, cfg.AtLeast(role, required),
				"role %s against required %s", role, required)
		}
	}
}

func TestAtLeastRejectsUnknownRoles(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.AtLeast("moderator", RoleStudent))
	assert.False(t, cfg.AtLeast(RoleAdmin, "moderator"))
}

func TestSuperAdminWildcard(t *testing.T) {
	cfg := Default()

	for _, p := range allPermissions {
		assert.True(t, cfg.HasPermission(RoleSuperAdmin, p), "permission %s", p)
	}
}

func TestPermissionMembership(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.HasPermission(RoleStudent, PermVideoCreate))
	assert.False(t, cfg.HasPermission(RoleStudent, PermVideoApprove))
	assert.True(t, cfg.HasPermission(RoleTeacher, PermVideoApprove))
	assert.False(t, cfg.HasPermission(RoleTeacher, PermUserList))
	assert.True(t, cfg.HasPermission(RoleAdmin, PermUserDelete))
	assert.False(t, cfg.HasPermission(RoleAdmin, PermUserRoleChange))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("  Teacher ")
	assert.True(t, ok)
	assert.Equal(t, RoleTeacher, role)

	_, ok = ParseRole("root")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestParsePermissionRejectsFreeFormStrings(t *testing.T) {
	p, ok := ParsePermission("video:create")
	assert.True(t, ok)
	assert.Equal(t, PermVideoCreate, p)

	_, ok = ParsePermission("video:transcode")
	assert.False(t, ok)
}

func TestAlternateTableIsInjectable(t *testing.T) {
	cfg := New(
		map[Role]int{"guest": 1, "owner": 2},
		map[Role][]Permission{"owner": {PermVideoCreate}},
	)

	assert.True(t, cfg.AtLeast("owner", "guest"))
	assert.False(t, cfg.HasPermission("guest", PermVideoCreate))
	assert.True(t, cfg.HasPermission("owner", PermVideoCreate))
	assert.False(t, cfg.Admin("owner"))
}
