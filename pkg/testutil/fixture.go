package testutil

import (
	"context"
	"fmt"

	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

const (
	SuperAdminID = "super_admin"
	AdminID      = "admin"
	UserID       = "user"
)

// CreateUsers inserts one admin of each kind, a regular user, and n active
// players named player1..playerN.
func CreateUsers(ctx context.Context, n int) []string {
	users := []entity.User{
		{Base: entity.Base{ID: SuperAdminID}, Name: "Super admin", Role: entity.RoleSuperAdmin, IsActive: true},
		{Base: entity.Base{ID: AdminID}, Name: "Admin", Role: entity.RoleAdmin, IsActive: true},
		{Base: entity.Base{ID: UserID}, Name: "User", Role: entity.RoleUser, IsActive: true},
	}

	ids := []string{}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("player%d", i)
		ids = append(ids, id)
		users = append(users, entity.User{
			Base:     entity.Base{ID: id},
			Name:     fmt.Sprintf("Player %d", i),
			Email:    fmt.Sprintf("%s@example.com", id),
			Role:     entity.RoleUser,
			IsActive: true,
		})
	}

	if err := xcontext.DB(ctx).Create(&users).Error; err != nil {
		panic(err)
	}

	return ids
}
