package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrder(t *testing.T) {
	assert.Equal(t, [...]Role{RoleAdmin, RoleAuthor, RoleTutor, RoleStudent}, RoleOrder)

	for i, role := range RoleOrder {
		assert.Equal(t, i, role.Rank(), role)
	}
	assert.Equal(t, -1, RoleAdmin.Compare(RoleAuthor))
	assert.Equal(t, -1, RoleAuthor.Compare(RoleTutor))
	assert.Equal(t, -1, RoleTutor.Compare(RoleStudent))
	assert.Equal(t, 1, RoleStudent.Compare(RoleAdmin))
	assert.Equal(t, 0, RoleTutor.Compare(RoleTutor))
}

func TestRoleAuthorized(t *testing.T) {
	tests := []struct {
		actor    Role
		required Role
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleStudent, true},
		{RoleAuthor, RoleTutor, true},
		{RoleTutor, RoleTutor, true},
		{RoleStudent, RoleTutor, false},
		{RoleTutor, RoleAuthor, false},
		{RoleAuthor, RoleAdmin, false},
		{RoleStudent, RoleStudent, true},
		{Role("janitor"), RoleStudent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.actor)+"_"+string(tt.required), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.Authorized(tt.required))
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range RoleOrder {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("Admin")
	assert.Error(t, err)
	assert.Equal(t, len(RoleOrder), Role("").Rank())
}
