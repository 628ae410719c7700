package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

const insertDeliveryLog = `
INSERT INTO delivery_logs (id, otp_id, channel, recipient, status, attempts, provider_response, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, '{}'::jsonb, $6, $6)`

const updateDeliveryLog = `
UPDATE delivery_logs
SET status = $2, attempts = $3, provider_response = $4, error_message = $5, updated_at = $6, sent_at = $7
WHERE id = $1`

const getDeliveryLogsByOTPID = `
SELECT id, otp_id::text, channel, recipient, status, attempts, provider_response, error_message, created_at, updated_at, sent_at
FROM delivery_logs
WHERE otp_id = $1
ORDER BY created_at, id`

func (s *DB) CreateDeliveryLog(ctx context.Context, in entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, insertDeliveryLog,
		in.ID, in.OTPID, in.Channel.String(), in.Recipient, int16(in.Status), in.CreatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) UpdateDeliveryLog(ctx context.Context, in entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	resp := in.ProviderResponse
	if resp == nil {
		resp = valueobject.JSONMap{}
	}

	tag, err := s.conn.Exec(ctx, updateDeliveryLog,
		in.ID, int16(in.Status), in.Attempts, resp, in.ErrorMessage, in.UpdatedAt, in.SentAt)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}

func (s *DB) ListDeliveryLogsByOTPID(ctx context.Context, otpID string) (_ []entity.DeliveryLog, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveryLogsByOTPID")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, getDeliveryLogsByOTPID, otpID)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	defer rows.Close()

	var logs []entity.DeliveryLog
	for rows.Next() {
		var (
			l       entity.DeliveryLog
			channel string
			status  int16
		)
		if err = rows.Scan(&l.ID, &l.OTPID, &channel, &l.Recipient, &status, &l.Attempts,
			&l.ProviderResponse, &l.ErrorMessage, &l.CreatedAt, &l.UpdatedAt, &l.SentAt); err != nil {
			err = s.mapError(err)
			return nil, err
		}
		l.Channel = entity.Channel(channel)
		l.Status = entity.DeliveryStatus(status)
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return logs, nil
}
