package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/tenant/entity"
)

const userColumns = `id, organization_id, email, phone, status, theme, created_at, updated_at`

const insertUser = `
INSERT INTO tenant_users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const getUserByID = `SELECT ` + userColumns + ` FROM tenant_users WHERE organization_id = $1 AND id = $2`

const listUsersByOrganization = `SELECT ` + userColumns + ` FROM tenant_users WHERE organization_id = $1 ORDER BY created_at, id`

// No status filter: a deactivated user still counts as a member.
const existsMembership = `SELECT EXISTS (SELECT 1 FROM tenant_users WHERE id = $1 AND organization_id = $2)`

func (s *DB) CreateUser(ctx context.Context, u entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, insertUser,
		u.ID, u.OrganizationID, u.Email, u.Phone, u.Status, u.Theme.String(), u.CreatedAt, u.UpdatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) GetUserByID(ctx context.Context, organizationID, userID string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, getUserByID, organizationID, userID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &u, nil
}

func (s *DB) ListUsersByOrganization(ctx context.Context, organizationID string) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "ListUsersByOrganization")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, listUsersByOrganization, organizationID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return users, nil
}

func (s *DB) ExistsMembership(ctx context.Context, userID, organizationID string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ExistsMembership")
	defer func() { s.endSpan(span, err) }()

	var ok bool
	if err = s.conn.QueryRow(ctx, existsMembership, userID, organizationID).Scan(&ok); err != nil {
		err = s.mapError(err)
		return false, err
	}

	return ok, nil
}

func scanUser(row pgx.CollectableRow) (entity.User, error) {
	var (
		u     entity.User
		theme string
	)
	if err := row.Scan(&u.ID, &u.OrganizationID, &u.Email, &u.Phone, &u.Status, &theme, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return entity.User{}, err
	}

	u.Theme = entity.ThemeFromString(theme)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
