package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reconcileapp "github.com/partnerportal/backend/internal/application/reconcile"
	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/reconcile"
	"github.com/partnerportal/backend/internal/interfaces/http/dto"
	"github.com/partnerportal/backend/internal/interfaces/http/middleware"
)

// ReconcileHandler handles identity reconciliation API endpoints
type ReconcileHandler struct {
	BaseHandler
	service    *reconcileapp.Service
	bulk       *reconcileapp.BulkService
	attributes account.AttributeRepository
}

// NewReconcileHandler creates a new ReconcileHandler
func NewReconcileHandler(service *reconcileapp.Service, bulk *reconcileapp.BulkService, attributes account.AttributeRepository) *ReconcileHandler {
	return &ReconcileHandler{
		service:    service,
		bulk:       bulk,
		attributes: attributes,
	}
}

// LinkRequest pairs an external customer with a portal account
type LinkRequest struct {
	ExternalID int64  `json:"external_id" binding:"required,min=1"`
	AccountID  string `json:"account_id" binding:"required,uuid"`
}

// Link establishes the link between an external customer and an account
func (h *ReconcileHandler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	accountID, err := parseUUID(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	result := h.service.LinkCustomer(c.Request.Context(), req.ExternalID, accountID)
	c.JSON(linkResultStatus(result), linkResultBody(result))
}

// Pull overwrites the linked account's shadow fields with the current
// remote state
func (h *ReconcileHandler) Pull(c *gin.Context) {
	var req dto.ExternalIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid external id")
		return
	}

	result, err := h.service.PullSync(c.Request.Context(), req.ExternalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RunBulk runs the bulk reconciliation job and returns the report.
// The job is synchronous; for large customer bases the out-of-band CLI
// is the better entry point.
func (h *ReconcileHandler) RunBulk(c *gin.Context) {
	report, err := h.bulk.Run(c.Request.Context())
	if err != nil {
		if report != nil {
			// Cancelled mid-run; return what was processed
			h.Success(c, report)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Unlink severs an account's link and drops the stored attributes for
// its external customer
func (h *ReconcileHandler) Unlink(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}
	accountID, err := parseUUID(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	resp, err := h.service.Unlink(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Candidates ranks the portal accounts an external customer could be
// linked to
func (h *ReconcileHandler) Candidates(c *gin.Context) {
	var req dto.ExternalIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid external id")
		return
	}

	result, err := h.service.LinkCandidates(c.Request.Context(), req.ExternalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetAttributes returns the structured attributes stored for an
// external customer
func (h *ReconcileHandler) GetAttributes(c *gin.Context) {
	var req dto.ExternalIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid external id")
		return
	}

	attrs, err := h.attributes.FindByExternalID(c.Request.Context(), req.ExternalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"external_id": req.ExternalID,
		"attributes":  account.AttributeMap(attrs),
	})
}

// linkResultStatus maps a link result onto an HTTP status code.
// Every skip is a 409 because the requested link collides with an
// existing one; the reason field in the body tells the caller which
// side carries it. Failures split into 404, 502 and 500.
func linkResultStatus(result *reconcile.LinkResult) int {
	switch result.Outcome {
	case reconcile.OutcomeLinked:
		return http.StatusOK
	case reconcile.OutcomeSkipped:
		return http.StatusConflict
	default:
		switch result.Reason {
		case reconcile.ReasonAccountNotFound, reconcile.ReasonExternalNotFound:
			return http.StatusNotFound
		case reconcile.ReasonRemoteUnavailable:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}
}

// linkResultBody wraps a link result in the standard envelope
func linkResultBody(result *reconcile.LinkResult) dto.Response {
	if result.Outcome == reconcile.OutcomeFailed {
		return dto.NewErrorResponse(failureCode(result.Reason), result.Message)
	}
	return dto.NewSuccessResponse(result)
}

func failureCode(reason string) string {
	switch reason {
	case reconcile.ReasonAccountNotFound, reconcile.ReasonExternalNotFound:
		return dto.ErrCodeNotFound
	case reconcile.ReasonRemoteUnavailable:
		return dto.ErrCodeRemoteUnavailable
	default:
		return dto.ErrCodeInternal
	}
}
