package handler

import (
	"github.com/gin-gonic/gin"

	portalapp "github.com/partnerportal/backend/internal/application/portal"
	reconcileapp "github.com/partnerportal/backend/internal/application/reconcile"
	"github.com/partnerportal/backend/internal/interfaces/http/middleware"
)

// AccountHandler handles portal account API endpoints
type AccountHandler struct {
	BaseHandler
	accountService   *portalapp.AccountService
	reconcileService *reconcileapp.Service
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *portalapp.AccountService, reconcileService *reconcileapp.Service) *AccountHandler {
	return &AccountHandler{
		accountService:   accountService,
		reconcileService: reconcileService,
	}
}

// ChangeCustomerNumberRequest carries a new customer number
type ChangeCustomerNumberRequest struct {
	CustomerNumber string `json:"customer_number" binding:"required,max=50"`
}

// Create registers a new portal account
func (h *AccountHandler) Create(c *gin.Context) {
	var req portalapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.accountService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a single account
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	resp, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetDetail returns an account with its recent external orders
func (h *AccountHandler) GetDetail(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	detail, err := h.accountService.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// List returns a filtered page of accounts
func (h *AccountHandler) List(c *gin.Context) {
	var req portalapp.ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.accountService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Activate activates a pending account and pushes the verified flag to
// the linked external customer
func (h *AccountHandler) Activate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	resp, err := h.reconcileService.ActivateAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Block blocks an account
func (h *AccountHandler) Block(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	resp, err := h.accountService.Block(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeCustomerNumber updates the customer number and pushes the
// recomposed note to the linked external customer
func (h *AccountHandler) ChangeCustomerNumber(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	var req ChangeCustomerNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.reconcileService.ChangeCustomerNumber(c.Request.Context(), id, req.CustomerNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// EnsureExternal makes sure the account has an external counterpart,
// creating and linking one when necessary
func (h *AccountHandler) EnsureExternal(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account id")
		return
	}

	result := h.reconcileService.EnsureExternalCustomer(c.Request.Context(), id)
	c.JSON(linkResultStatus(result), linkResultBody(result))
}
