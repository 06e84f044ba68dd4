package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRoleFlags(t *testing.T) {
	user := &User{Role: RoleUser}
	assert.True(t, user.IsUserRole())
	assert.False(t, user.IsModerator())
	assert.False(t, user.IsAdmin())

	moderator := &User{Role: RoleModerator}
	assert.True(t, moderator.IsModerator())
	assert.False(t, moderator.IsAdmin())

	admin := &User{Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsModerator())
}

func TestIsAdmin_StaffOverride(t *testing.T) {
	staff := &User{Role: RoleUser, IsStaff: true}
	assert.True(t, staff.IsAdmin())
	assert.True(t, staff.IsUserRole())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleModerator))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole("Admin"))
}
