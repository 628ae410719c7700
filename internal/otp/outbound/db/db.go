package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DB is the pgx backed OTP store. Status transitions are single conditional
// UPDATE statements so concurrent verifiers serialize on the row lock.
type DB struct {
	conn *pgxpool.Pool
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, uuid uid.StringID, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		uuid: uuid,
		ins:  ins,
	}
}

// - 23505 unique violation → goerror.ErrConflict
// - anything else (connection refused, timeout, ...) is returned as-is and
// becomes StorageUnavailable in the usecase.
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
