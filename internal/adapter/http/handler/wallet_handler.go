package handler

import (
	"yanki-wallet-service/internal/adapter/http/dto"
	"yanki-wallet-service/internal/core/ports"
	"yanki-wallet-service/pkg/apperror"
	"yanki-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles the wallet CRUD endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// List returns every wallet record.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.walletSvc.FindAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(wallets) == 0 {
		response.NotFound(c, "wallets")
		return
	}
	response.OK(c, dto.FromDomainList(wallets))
}

// GetByID returns a single wallet by its id.
func (h *WalletHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	w, err := h.walletSvc.FindByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if w == nil {
		response.NotFound(c, "wallet")
		return
	}
	response.OK(c, dto.FromDomain(w))
}

// GetByIdentityDNI returns a single wallet by its owner's identity document.
func (h *WalletHandler) GetByIdentityDNI(c *gin.Context) {
	identityDNI := c.Param("identityDni")

	w, err := h.walletSvc.FindByIdentityDNI(c.Request.Context(), identityDNI)
	if err != nil {
		response.Error(c, err)
		return
	}
	if w == nil {
		response.NotFound(c, "wallet")
		return
	}
	response.OK(c, dto.FromDomain(w))
}

// Create registers a new wallet.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := req.ToDomain()
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	created, err := h.walletSvc.Create(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created == nil {
		response.NotFound(c, "wallet")
		return
	}
	response.Created(c, dto.FromDomain(created))
}

// Update merges the request body into the wallet identified by the path id.
func (h *WalletHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	patch, err := req.ToDomain()
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	updated, err := h.walletSvc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	if updated == nil {
		response.NotFound(c, "wallet")
		return
	}
	response.OK(c, dto.FromDomain(updated))
}

// Delete removes the wallet identified by the path id and returns the
// deleted record as confirmation.
func (h *WalletHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.walletSvc.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if deleted == nil {
		response.NotFound(c, "wallet")
		return
	}
	response.OK(c, dto.FromDomain(deleted))
}
