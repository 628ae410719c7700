package usecase

import (
	"context"
	"log/slog"
	"strings"
)

// IsMember reports whether userID belongs to organizationID. Storage failures
// are returned untouched so the caller can classify them.
func (s *Usecase) IsMember(ctx context.Context, userID, organizationID string) (bool, error) {
	ctx, span := s.startSpan(ctx, "IsMember")
	defer span.End()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(organizationID) == "" {
		return false, nil
	}

	ok, err := s.repoDB.ExistsMembership(ctx, userID, organizationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo exists membership", "user_id", userID, "organization_id", organizationID, "error", err)
		return false, err
	}

	return ok, nil
}
