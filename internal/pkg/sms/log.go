package sms

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.uber.org/atomic"
)

// Log accepts every message and writes it to the structured log. The body is
// logged under "code" so the log mask hides it.
type Log struct {
	seq atomic.Int64
}

func NewLog() *Log { return &Log{} }

func (l *Log) Send(ctx context.Context, msg Message) (Receipt, error) {
	if msg.To == "" || msg.Body == "" {
		return Receipt{}, &Error{Kind: KindValidation, Message: "recipient and body are required"}
	}

	id := "log-" + strconv.FormatInt(l.seq.Inc(), 10)
	slog.InfoContext(ctx, "sms accepted by log gateway",
		"provider_message_id", id,
		"reference", msg.Reference,
		"phone", msg.To,
		"code", msg.Body,
	)

	return Receipt{ProviderMessageID: id, StatusCode: 200, AcceptedAt: time.Now().UTC()}, nil
}
