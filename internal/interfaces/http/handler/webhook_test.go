package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reconcileapp "github.com/partnerportal/backend/internal/application/reconcile"
	"github.com/partnerportal/backend/internal/infrastructure/commerce"
	"github.com/partnerportal/backend/internal/interfaces/http/dto"
)

func newWebhookTestRouter(t *testing.T) (*gin.Engine, *commerce.Config) {
	t.Helper()

	cfg := commerce.NewConfig("https://api.example.com", "token", "whsecret")
	// The verification and parsing paths never reach the inner service,
	// so the handler can be exercised without repositories.
	ws := reconcileapp.NewWebhookService(cfg, nil, zap.NewNop())
	h := NewWebhookHandler(ws, 1024*1024)

	router := gin.New()
	router.POST("/webhooks/commerce", h.Receive)
	return router, cfg
}

func postWebhook(router *gin.Engine, body []byte, signature, topic string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/commerce", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	if topic != "" {
		req.Header.Set(TopicHeader, topic)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookReceive_MissingSignature(t *testing.T) {
	router, _ := newWebhookTestRouter(t)

	w := postWebhook(router, []byte(`{"id":1}`), "", "customers/update")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeSignatureInvalid, resp.Error.Code)
}

func TestWebhookReceive_MissingTopic(t *testing.T) {
	router, cfg := newWebhookTestRouter(t)

	body := []byte(`{"id":1}`)
	w := postWebhook(router, body, cfg.SignWebhook(body), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookReceive_InvalidSignature(t *testing.T) {
	router, cfg := newWebhookTestRouter(t)

	// Signature computed over different bytes than the delivered body
	signature := cfg.SignWebhook([]byte(`{"id":2}`))
	w := postWebhook(router, []byte(`{"id":1}`), signature, "customers/update")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeSignatureInvalid, resp.Error.Code)
}

func TestWebhookReceive_UnknownTopic(t *testing.T) {
	router, cfg := newWebhookTestRouter(t)

	body := []byte(`{"id":42,"email":"x@example.com"}`)
	w := postWebhook(router, body, cfg.SignWebhook(body), "orders/create")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookReceive_DeletedTopicAcknowledged(t *testing.T) {
	router, cfg := newWebhookTestRouter(t)

	body := []byte(`{"id":42,"email":"x@example.com"}`)
	w := postWebhook(router, body, cfg.SignWebhook(body), "customers/delete")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestWebhookReceive_MalformedPayload(t *testing.T) {
	router, cfg := newWebhookTestRouter(t)

	body := []byte(`not json at all`)
	w := postWebhook(router, body, cfg.SignWebhook(body), "customers/update")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
