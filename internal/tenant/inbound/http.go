package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/tenant/entity"
	"github.com/shandysiswandi/otpgate/internal/tenant/usecase"
)

type uc interface {
	OrganizationCreate(ctx context.Context, in usecase.OrganizationCreateInput) (*entity.Organization, error)
	OrganizationDetail(ctx context.Context, in usecase.OrganizationDetailInput) (*entity.Organization, error)

	UserCreate(ctx context.Context, in usecase.UserCreateInput) (*entity.User, error)
	UserList(ctx context.Context, in usecase.UserListInput) ([]entity.User, error)
	UserDetail(ctx context.Context, in usecase.UserDetailInput) (*entity.User, error)
}

// RegisterHTTPEndpoint mounts tenant management. Routes require X-API-Key once
// app.server.api_keys is configured.
func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/organizations", end.OrganizationCreate)
	r.GET("/api/v1/organizations/:id", end.OrganizationDetail)

	r.POST("/api/v1/organizations/:id/users", end.UserCreate)
	r.GET("/api/v1/organizations/:id/users", end.UserList)
	r.GET("/api/v1/organizations/:id/users/:user_id", end.UserDetail)
}
