package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	require.Error(t, Register(nil))
	require.Error(t, Register(&Permission{ID: "  "}))
	require.Error(t, Register(&Permission{ID: "loop.perm", Implies: []string{"loop.perm"}}))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	require.NoError(t, Register(&Permission{ID: "registry_test.unique", Module: "test"}))
	require.Error(t, Register(&Permission{ID: "registry_test.unique", Module: "test"}))
}

func TestGetReturnsCopies(t *testing.T) {
	require.NoError(t, Register(&Permission{
		ID:      "registry_test.copy",
		Module:  "test",
		Implies: []string{PanelView},
	}))

	first, ok := Get("registry_test.copy")
	require.True(t, ok)
	first.Implies[0] = "mutated"

	second, ok := Get("registry_test.copy")
	require.True(t, ok)
	require.Equal(t, []string{PanelView}, second.Implies)
}

func TestCorePermissionsRegistered(t *testing.T) {
	view, ok := Get(PanelView)
	require.True(t, ok)
	require.Equal(t, "panel", view.Module)

	update, ok := Get(PanelUpdate)
	require.True(t, ok)
	require.Equal(t, []string{PanelView}, update.Implies)

	_, ok = Get(AuditView)
	require.True(t, ok)
}
