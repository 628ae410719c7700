package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/tenant/entity"
)

const insertOrganization = `
INSERT INTO tenant_organizations (id, org_code, org_name, org_website, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const getOrganizationByID = `
SELECT id, org_code, org_name, org_website, status, created_at, updated_at
FROM tenant_organizations
WHERE id = $1`

func (s *DB) CreateOrganization(ctx context.Context, org entity.Organization) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOrganization")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, insertOrganization,
		org.ID, org.Code, org.Name, org.Website, org.Status, org.CreatedAt, org.UpdatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) GetOrganizationByID(ctx context.Context, id string) (_ *entity.Organization, err error) {
	ctx, span := s.startSpan(ctx, "GetOrganizationByID")
	defer func() { s.endSpan(span, err) }()

	var org entity.Organization
	err = s.conn.QueryRow(ctx, getOrganizationByID, id).Scan(
		&org.ID, &org.Code, &org.Name, &org.Website, &org.Status, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	org.CreatedAt = org.CreatedAt.UTC()
	org.UpdatedAt = org.UpdatedAt.UTC()
	return &org, nil
}
