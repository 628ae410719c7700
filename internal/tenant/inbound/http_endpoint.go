package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/tenant/usecase"
)

type HTTPEndpoint struct {
	uc uc
}

// OrganizationCreate registers a tenant organization.
// @Summary Create organization
// @Tags Tenant
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body OrganizationCreateRequest true "Organization payload"
// @Success 201 {object} router.successResponse{data=OrganizationResponse} "Organization created"
// @Failure 409 {object} router.errorResponse "Organization already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/organizations [post]
func (h *HTTPEndpoint) OrganizationCreate(r *router.Request) (any, error) {
	var req OrganizationCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	org, err := h.uc.OrganizationCreate(r.Context(), usecase.OrganizationCreateInput{
		ID:      req.ID,
		Code:    req.Code,
		Name:    req.Name,
		Website: req.Website,
	})
	if err != nil {
		return nil, err
	}

	return OrganizationCreateResponse{toOrganizationResponse(*org)}, nil
}

// @Router /api/v1/organizations/{id} [get]
func (h *HTTPEndpoint) OrganizationDetail(r *router.Request) (any, error) {
	org, err := h.uc.OrganizationDetail(r.Context(), usecase.OrganizationDetailInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return toOrganizationResponse(*org), nil
}

// UserCreate adds a member to the organization in the path.
// @Summary Create user
// @Tags Tenant
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body UserCreateRequest true "User payload"
// @Success 201 {object} router.successResponse{data=UserResponse} "User created"
// @Failure 404 {object} router.errorResponse "Organization not found"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Router /api/v1/organizations/{id}/users [post]
func (h *HTTPEndpoint) UserCreate(r *router.Request) (any, error) {
	var req UserCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	u, err := h.uc.UserCreate(r.Context(), usecase.UserCreateInput{
		ID:             req.ID,
		OrganizationID: r.GetParam("id"),
		Email:          req.Email,
		Phone:          req.Phone,
		Theme:          req.Theme,
	})
	if err != nil {
		return nil, err
	}

	return UserCreateResponse{toUserResponse(*u)}, nil
}

// @Router /api/v1/organizations/{id}/users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	users, err := h.uc.UserList(r.Context(), usecase.UserListInput{OrganizationID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return UserListResponse{Users: toUserResponses(users)}, nil
}

// @Router /api/v1/organizations/{id}/users/{user_id} [get]
func (h *HTTPEndpoint) UserDetail(r *router.Request) (any, error) {
	u, err := h.uc.UserDetail(r.Context(), usecase.UserDetailInput{
		OrganizationID: r.GetParam("id"),
		UserID:         r.GetParam("user_id"),
	})
	if err != nil {
		return nil, err
	}

	return toUserResponse(*u), nil
}
