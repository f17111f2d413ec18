package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domaincommerce "github.com/partnerportal/backend/internal/domain/commerce"
	"github.com/partnerportal/backend/internal/domain/shared"
	"github.com/partnerportal/backend/internal/infrastructure/commerce"
)

func newWebhookFixture(t *testing.T) (*WebhookService, *MockAccountRepository, *MockAttributeRepository, *MockGateway, *commerce.Config) {
	t.Helper()
	cfg := commerce.NewConfig("https://api.example.com", "token", "whsecret")

	accounts := new(MockAccountRepository)
	attributes := new(MockAttributeRepository)
	gateway := new(MockGateway)
	svc := newTestService(accounts, attributes, gateway)

	return NewWebhookService(cfg, svc, zap.NewNop()), accounts, attributes, gateway, cfg
}

func TestWebhookService_Process_UpdateSyncsLinkedAccount(t *testing.T) {
	ws, accounts, attributes, gateway, cfg := newWebhookFixture(t)

	a := linkedAccount(t, "erika@acme.example", 999)
	customer := testCustomer(999, a.Email)

	accounts.On("FindByLinkedExternalID", mock.Anything, int64(999)).Return(a, nil)
	gateway.On("GetCustomer", mock.Anything, int64(999)).Return(customer, nil)
	accounts.On("Save", mock.Anything, a).Return(nil)
	attributes.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	attributes.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	payload := []byte(`{"id": 999, "email": "erika@acme.example"}`)
	result, err := ws.Process(context.Background(), payload, cfg.SignWebhook(payload), TopicCustomerUpdated)

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, int64(999), result.ExternalID)
	assert.Equal(t, "synced", result.Message)
	assert.Equal(t, "+49 30 1234567", a.Phone)
}

func TestWebhookService_Process_InvalidSignature(t *testing.T) {
	ws, accounts, _, _, cfg := newWebhookFixture(t)

	payload := []byte(`{"id": 999}`)
	signature := cfg.SignWebhook([]byte(`{"id": 998}`))

	result, err := ws.Process(context.Background(), payload, signature, TopicCustomerUpdated)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrSignatureInvalid)
	accounts.AssertNotCalled(t, "FindByLinkedExternalID", mock.Anything, mock.Anything)
}

func TestWebhookService_Process_MissingSignature(t *testing.T) {
	ws, _, _, _, _ := newWebhookFixture(t)

	payload := []byte(`{"id": 999}`)
	result, err := ws.Process(context.Background(), payload, "", TopicCustomerUpdated)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrSignatureInvalid)
}

func TestWebhookService_Process_MalformedPayload(t *testing.T) {
	ws, _, _, _, cfg := newWebhookFixture(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"id": `},
		{"missing id", `{"email": "erika@acme.example"}`},
		{"zero id", `{"id": 0}`},
		{"negative id", `{"id": -3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(tt.payload)
			result, err := ws.Process(context.Background(), payload, cfg.SignWebhook(payload), TopicCustomerCreated)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestWebhookService_Process_UnknownTopic(t *testing.T) {
	ws, _, _, _, cfg := newWebhookFixture(t)

	payload := []byte(`{"id": 999}`)
	result, err := ws.Process(context.Background(), payload, cfg.SignWebhook(payload), "orders/create")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestWebhookService_Process_UnlinkedCustomerAcknowledged(t *testing.T) {
	ws, accounts, _, _, cfg := newWebhookFixture(t)

	// No linked account: acknowledged so the platform stops retrying
	accounts.On("FindByLinkedExternalID", mock.Anything, int64(999)).Return(nil, shared.ErrNotFound)

	payload := []byte(`{"id": 999}`)
	result, err := ws.Process(context.Background(), payload, cfg.SignWebhook(payload), TopicCustomerCreated)

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "no linked account", result.Message)
}

func TestWebhookService_Process_SyncFailureReturnsError(t *testing.T) {
	ws, accounts, _, gateway, cfg := newWebhookFixture(t)

	a := linkedAccount(t, "erika@acme.example", 999)
	accounts.On("FindByLinkedExternalID", mock.Anything, int64(999)).Return(a, nil)
	gateway.On("GetCustomer", mock.Anything, int64(999)).
		Return(nil, fmt.Errorf("%w: status 502", domaincommerce.ErrUnavailable))

	payload := []byte(`{"id": 999}`)
	result, err := ws.Process(context.Background(), payload, cfg.SignWebhook(payload), TopicCustomerUpdated)

	require.Error(t, err)
	assert.ErrorIs(t, err, domaincommerce.ErrUnavailable)
	assert.False(t, result.Processed)
}

func TestWebhookService_Process_DeletedRetainsLink(t *testing.T) {
	ws, accounts, _, _, cfg := newWebhookFixture(t)

	payload := []byte(`{"id": 999}`)
	result, err := ws.Process(context.Background(), payload, cfg.SignWebhook(payload), TopicCustomerDeleted)

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "customer deleted upstream; link retained", result.Message)
	// Nothing touches the stored account
	accounts.AssertNotCalled(t, "FindByLinkedExternalID", mock.Anything, mock.Anything)
	accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWebhookService_Process_ReplayIsIdempotent(t *testing.T) {
	ws, accounts, attributes, gateway, cfg := newWebhookFixture(t)

	a := linkedAccount(t, "erika@acme.example", 999)
	customer := testCustomer(999, a.Email)

	accounts.On("FindByLinkedExternalID", mock.Anything, int64(999)).Return(a, nil)
	gateway.On("GetCustomer", mock.Anything, int64(999)).Return(customer, nil)
	accounts.On("Save", mock.Anything, a).Return(nil)
	attributes.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	attributes.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	payload := []byte(`{"id": 999}`)
	signature := cfg.SignWebhook(payload)

	for i := 0; i < 3; i++ {
		result, err := ws.Process(context.Background(), payload, signature, TopicCustomerUpdated)
		require.NoError(t, err)
		assert.True(t, result.Processed)
	}
	assert.Equal(t, "+49 30 1234567", a.Phone)
}
