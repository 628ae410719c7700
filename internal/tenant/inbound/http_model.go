package inbound

import (
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/tenant/entity"
)

type OrganizationCreateRequest struct {
	ID      string `json:"id"`
	Code    string `json:"org_code"`
	Name    string `json:"org_name"`
	Website string `json:"org_website"`
}

type OrganizationResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"org_code"`
	Name      string    `json:"org_name"`
	Website   string    `json:"org_website"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrganizationCreateResponse struct {
	OrganizationResponse
}

func (OrganizationCreateResponse) Message() string { return "Organization created successfully" }
func (OrganizationCreateResponse) StatusCode() int { return http.StatusCreated }

type UserCreateRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Theme string `json:"theme"`
}

type UserResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Status         bool      `json:"status"`
	Theme          string    `json:"theme"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UserCreateResponse struct {
	UserResponse
}

func (UserCreateResponse) Message() string { return "User created successfully" }
func (UserCreateResponse) StatusCode() int { return http.StatusCreated }

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

func (r UserListResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Users)}
}

func toOrganizationResponse(org entity.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        org.ID,
		Code:      org.Code,
		Name:      org.Name,
		Website:   org.Website,
		Status:    org.Status,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

func toUserResponse(u entity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Email:          u.Email,
		Phone:          u.Phone,
		Status:         u.Status,
		Theme:          u.Theme.String(),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserResponses(users []entity.User) []UserResponse {
	return lo.Map(users, func(u entity.User, _ int) UserResponse { return toUserResponse(u) })
}
