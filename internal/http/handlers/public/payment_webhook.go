package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/http/response"
	"github.com/baguri-ro/baguri-api/internal/service"

	"github.com/gin-gonic/gin"
)

// StripeWebhook receives payment events from Stripe. The response only
// acknowledges receipt; settlement happens asynchronously.
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	log.Infow("stripe_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"stripe_signature", truncateWebhookLogValue(strings.TrimSpace(c.GetHeader("Stripe-Signature"))),
	)

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	if err := h.PaymentService.HandleWebhook(c.Request.Context(), headers, body); err != nil {
		log.Warnw("stripe_webhook_handle_failed", "error", err)
		switch {
		case errors.Is(err, service.ErrWebhookSignatureInvalid):
			respondError(c, response.CodeBadRequest, "webhook signature invalid", nil)
		case errors.Is(err, service.ErrWebhookPayloadInvalid):
			respondError(c, response.CodeBadRequest, "webhook payload invalid", nil)
		default:
			// A 5xx makes Stripe redeliver the event; the event store
			// dedupes the replay once processing recovers.
			response.ErrorWithHTTPStatus(c, http.StatusInternalServerError,
				response.CodeInternal, "webhook processing failed")
		}
		return
	}

	response.Success(c, gin.H{"accepted": true})
}

func truncateWebhookLogValue(value string) string {
	const maxLen = 64
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "..."
}
