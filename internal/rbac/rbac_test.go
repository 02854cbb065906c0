// AngelaMos | 2026
// rbac_test.go

package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/airline-directory/internal/core"
)

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		capability Capability
		superadmin bool
		manager    bool
		editor     bool
	}{
		{ManageUsers, true, false, false},
		{ReviewContent, true, true, false},
		{WriteContent, true, true, true},
		{ManageOffices, true, true, false},
		{ViewSystem, true, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			assert.Equal(t, tt.superadmin, Can(RoleSuperadmin, tt.capability))
			assert.Equal(t, tt.manager, Can(RoleManager, tt.capability))
			assert.Equal(t, tt.editor, Can(RoleEditor, tt.capability))
		})
	}
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	for _, c := range []Capability{ManageUsers, ReviewContent, WriteContent, ManageOffices, ViewSystem} {
		assert.False(t, Can("", c))
		assert.False(t, Can("admin", c))
	}
}

func TestAuthorize(t *testing.T) {
	require.NoError(t, Authorize(RoleManager, ReviewContent))

	err := Authorize(RoleEditor, ReviewContent)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("owner")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
