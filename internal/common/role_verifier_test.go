package common

import (
	"testing"

	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/testutil"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestGlobalRoleVerifier_Verify(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateUsers(ctx, 0)
	verifier := NewGlobalRoleVerifier(repository.NewUserRepository())

	require.NoError(t, verifier.Verify(
		xcontext.WithRequestUserID(ctx, testutil.AdminID), entity.GlobalAdminRoles...))
	require.NoError(t, verifier.Verify(
		xcontext.WithRequestUserID(ctx, testutil.SuperAdminID), entity.GlobalAdminRoles...))
	require.Error(t, verifier.Verify(
		xcontext.WithRequestUserID(ctx, testutil.UserID), entity.GlobalAdminRoles...))
	require.Error(t, verifier.Verify(
		xcontext.WithRequestUserID(ctx, "unknown"), entity.GlobalAdminRoles...))
	require.Error(t, verifier.Verify(ctx, entity.GlobalAdminRoles...))
}
