package reconcile

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/partnerportal/backend/internal/domain/shared"
	"github.com/partnerportal/backend/internal/infrastructure/commerce"
)

// Webhook topics sent by the commerce platform
const (
	TopicCustomerCreated = "customers/create"
	TopicCustomerUpdated = "customers/update"
	TopicCustomerDeleted = "customers/delete"
)

// Webhook processing errors
var (
	// ErrUnknownTopic marks a topic this system does not handle. A
	// protocol mismatch, not a server fault.
	ErrUnknownTopic = errors.New("unknown webhook topic")
	// ErrMalformedPayload marks a body that does not parse as a customer payload
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// WebhookService verifies and dispatches inbound change notifications
// from the commerce platform
type WebhookService struct {
	config  *commerce.Config
	service *Service
	logger  *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(config *commerce.Config, service *Service, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		config:  config,
		service: service,
		logger:  logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	Topic      string `json:"topic"`
	ExternalID int64  `json:"external_id"`
	Processed  bool   `json:"processed"`
	Message    string `json:"message,omitempty"`
}

// webhookCustomerPayload is the slice of the customer payload the
// dispatcher needs; the sync step re-fetches the full record itself.
type webhookCustomerPayload struct {
	ID int64 `json:"id"`
}

// Process verifies a webhook's signature, parses its payload, and
// dispatches it to the reconciliation service. All outcomes are
// returned synchronously; the platform's own retry policy is the only
// retry mechanism.
func (s *WebhookService) Process(ctx context.Context, payload []byte, signature, topic string) (*WebhookResult, error) {
	if !s.config.VerifyWebhookSignature(payload, signature) {
		s.logger.Warn("webhook signature verification failed",
			zap.String("topic", topic))
		return nil, shared.ErrSignatureInvalid
	}

	var customer webhookCustomerPayload
	if err := json.Unmarshal(payload, &customer); err != nil || customer.ID <= 0 {
		return nil, ErrMalformedPayload
	}

	s.logger.Info("processing commerce webhook",
		zap.String("topic", topic),
		zap.Int64("external_id", customer.ID))

	result := &WebhookResult{
		Topic:      topic,
		ExternalID: customer.ID,
		Processed:  true,
	}

	switch topic {
	case TopicCustomerCreated, TopicCustomerUpdated:
		if _, err := s.service.PullSync(ctx, customer.ID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// No linked account yet. Acknowledged so the platform
				// does not retry; the bulk job picks the record up.
				result.Message = "no linked account"
				return result, nil
			}
			result.Processed = false
			result.Message = err.Error()
			return result, err
		}
		result.Message = "synced"
	case TopicCustomerDeleted:
		// Deletion policy is retain-link: the local account keeps its
		// link and shadow fields until an operator decides otherwise.
		result.Message = "customer deleted upstream; link retained"
	default:
		return nil, ErrUnknownTopic
	}

	return result, nil
}
