package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	reconcileapp "github.com/partnerportal/backend/internal/application/reconcile"
	"github.com/partnerportal/backend/internal/domain/shared"
	"github.com/partnerportal/backend/internal/interfaces/http/dto"
)

// Webhook headers set by the commerce platform
const (
	SignatureHeader = "X-Signature"
	TopicHeader     = "X-Topic"
)

// WebhookHandler receives change notifications from the commerce platform
type WebhookHandler struct {
	BaseHandler
	webhooks    *reconcileapp.WebhookService
	maxBodySize int64
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhooks *reconcileapp.WebhookService, maxBodySize int64) *WebhookHandler {
	return &WebhookHandler{
		webhooks:    webhooks,
		maxBodySize: maxBodySize,
	}
}

// Receive verifies and processes an inbound webhook. The raw body is
// read before any parsing because the signature covers the exact bytes
// the platform sent.
func (h *WebhookHandler) Receive(c *gin.Context) {
	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeSignatureInvalid, "Missing signature header")
		return
	}
	topic := c.GetHeader(TopicHeader)
	if topic == "" {
		h.BadRequest(c, "Missing topic header")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodySize))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.webhooks.Process(c.Request.Context(), payload, signature, topic)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrSignatureInvalid):
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeSignatureInvalid, "Signature verification failed")
		case errors.Is(err, reconcileapp.ErrUnknownTopic):
			h.BadRequest(c, "Unknown webhook topic")
		case errors.Is(err, reconcileapp.ErrMalformedPayload):
			h.BadRequest(c, "Malformed webhook payload")
		default:
			// Processing failed after verification; a 5xx makes the
			// platform redeliver later.
			h.InternalError(c, "Webhook processing failed")
		}
		return
	}

	h.Success(c, result)
}
