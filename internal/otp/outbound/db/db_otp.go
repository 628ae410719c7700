package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const selectColumns = `id::text, user_id, organization_id, phone, code, status, created_at, expires_at, verified_at`

const insertOTP = `
INSERT INTO otp_records (id, user_id, organization_id, phone, code, status, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const findLatestPendingOTP = `
SELECT ` + selectColumns + `
FROM otp_records
WHERE user_id = $1 AND organization_id = $2 AND phone = $3 AND code = $4 AND status = 1
ORDER BY created_at DESC, id DESC
LIMIT 1`

const getOTPByID = `SELECT ` + selectColumns + ` FROM otp_records WHERE id = $1`

const markOTPExpired = `UPDATE otp_records SET status = 3 WHERE id = $1 AND status = 1`

const markOTPVerified = `UPDATE otp_records SET status = 2, verified_at = $2 WHERE id = $1 AND status = 1`

const expireStaleOTP = `UPDATE otp_records SET status = 3 WHERE status = 1 AND expires_at < $1`

func (s *DB) Insert(ctx context.Context, in entity.NewRecord) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "Insert")
	defer func() { s.endSpan(span, err) }()

	rec := &entity.Record{
		ID:        s.uuid.Generate(),
		Scope:     in.Scope,
		Code:      in.Code,
		Status:    entity.StatusPending,
		CreatedAt: in.CreatedAt,
		ExpiresAt: in.ExpiresAt,
	}

	_, err = s.conn.Exec(ctx, insertOTP,
		rec.ID,
		rec.Scope.UserID,
		rec.Scope.OrganizationID,
		rec.Scope.Phone,
		rec.Code,
		int16(rec.Status),
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

func (s *DB) FindLatestPending(ctx context.Context, scope entity.Scope, code string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "FindLatestPending")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, findLatestPendingOTP, scope.UserID, scope.OrganizationID, scope.Phone, code)

	rec, err := scanRecord(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

func (s *DB) GetByID(ctx context.Context, id string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "GetByID")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanRecord(s.conn.QueryRow(ctx, getOTPByID, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}

func (s *DB) MarkExpired(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "MarkExpired")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, markOTPExpired, id)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() != 1 {
		return entity.ErrAlreadyTerminal
	}

	return nil
}

func (s *DB) MarkVerified(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "MarkVerified")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, markOTPVerified, id, at)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() != 1 {
		return entity.ErrAlreadyTerminal
	}

	return nil
}

// ExpireStale marks every pending record that expired before the given instant.
func (s *DB) ExpireStale(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "ExpireStale")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, expireStaleOTP, before)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (*entity.Record, error) {
	var (
		rec        entity.Record
		status     int16
		verifiedAt *time.Time
	)

	if err := row.Scan(
		&rec.ID,
		&rec.Scope.UserID,
		&rec.Scope.OrganizationID,
		&rec.Scope.Phone,
		&rec.Code,
		&status,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&verifiedAt,
	); err != nil {
		return nil, err
	}

	rec.Status = entity.Status(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	if verifiedAt != nil {
		at := verifiedAt.UTC()
		rec.VerifiedAt = &at
	}

	return &rec, nil
}
