package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/delivery/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/deliveries", end.DeliveryLogs) // ?otp_id=
}

type HTTPEndpoint struct {
	uc uc
}

type DeliveryLogResponse struct {
	ID               int64               `json:"id,string"`
	OTPID            string              `json:"otp_id"`
	Channel          string              `json:"channel"`
	Recipient        string              `json:"recipient"`
	Status           string              `json:"status"`
	Attempts         int                 `json:"attempts"`
	ProviderResponse valueobject.JSONMap `json:"provider_response"`
	ErrorMessage     *string             `json:"error_message"`
	CreatedAt        time.Time           `json:"created_at"`
	SentAt           *time.Time          `json:"sent_at"`
}

type DeliveryLogsResponse struct {
	Logs []DeliveryLogResponse `json:"logs"`
}

// DeliveryLogs lists SMS delivery attempts for one OTP.
// @Summary List delivery logs
// @Tags Delivery
// @Security ApiKeyAuth
// @Produce json
// @Param otp_id query string true "OTP ID"
// @Success 200 {object} router.successResponse{data=DeliveryLogsResponse} "Delivery logs"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/deliveries [get]
func (h *HTTPEndpoint) DeliveryLogs(r *router.Request) (any, error) {
	logs, err := h.uc.DeliveryLogs(r.Context(), usecase.DeliveryLogsInput{OTPID: r.GetQuery("otp_id")})
	if err != nil {
		return nil, err
	}

	return DeliveryLogsResponse{Logs: lo.Map(logs, func(l entity.DeliveryLog, _ int) DeliveryLogResponse {
		return DeliveryLogResponse{
			ID:               l.ID,
			OTPID:            l.OTPID,
			Channel:          l.Channel.String(),
			Recipient:        l.Recipient,
			Status:           l.Status.String(),
			Attempts:         l.Attempts,
			ProviderResponse: l.ProviderResponse,
			ErrorMessage:     l.ErrorMessage,
			CreatedAt:        l.CreatedAt,
			SentAt:           l.SentAt,
		}
	})}, nil
}
