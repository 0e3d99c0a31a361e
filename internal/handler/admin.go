package handler

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"raffle/internal/raffle"
	"raffle/internal/service"
)

// AdminHandler exposes the owner-gated platform policy operations plus the
// oracle resolution callback. Authorization is enforced by the ledger from
// the caller header, not by the router.
type AdminHandler struct {
	Svc *service.FactoryService
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/admin")
	group.GET("/policy", h.policy)
	group.PUT("/fee", h.updateFee)
	group.PUT("/wallet", h.updateWallet)
	group.POST("/pause", h.pause)
	group.POST("/unpause", h.unpause)

	r.POST("/api/v1/raffles/:id/resolve", h.resolve)
}

func (h *AdminHandler) policy(c *gin.Context) {
	pol := h.Svc.Core.Policy()
	Ok(c, gin.H{
		"owner":            pol.Owner.Hex(),
		"platform_wallet":  pol.PlatformWallet.Hex(),
		"platform_fee_bps": pol.PlatformFeeBps,
		"paused":           pol.Paused,
	}, nil)
}

type updateFeeRequest struct {
	FeeBps uint32 `json:"fee_bps"`
}

func (h *AdminHandler) updateFee(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req updateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if err := h.Svc.UpdatePlatformFee(c.Request.Context(), who, req.FeeBps); err != nil {
		LedgerError(c, err)
		return
	}
	Ok(c, gin.H{"fee_bps": req.FeeBps}, nil)
}

type updateWalletRequest struct {
	Wallet string `json:"wallet"`
}

func (h *AdminHandler) updateWallet(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req updateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if !common.IsHexAddress(strings.TrimSpace(req.Wallet)) {
		Error(c, http.StatusBadRequest, "malformed wallet address", nil)
		return
	}
	wallet := common.HexToAddress(strings.TrimSpace(req.Wallet))
	if err := h.Svc.UpdatePlatformWallet(c.Request.Context(), who, wallet); err != nil {
		LedgerError(c, err)
		return
	}
	Ok(c, gin.H{"wallet": wallet.Hex()}, nil)
}

func (h *AdminHandler) pause(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	if err := h.Svc.Pause(c.Request.Context(), who); err != nil {
		LedgerError(c, err)
		return
	}
	Ok(c, gin.H{"paused": true}, nil)
}

func (h *AdminHandler) unpause(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	if err := h.Svc.Unpause(c.Request.Context(), who); err != nil {
		LedgerError(c, err)
		return
	}
	Ok(c, gin.H{"paused": false}, nil)
}

type resolveRequest struct {
	Status string `json:"status"`
	Winner string `json:"winner,omitempty"`
}

func (h *AdminHandler) resolve(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	var out raffle.Outcome
	switch strings.TrimSpace(req.Status) {
	case "completed":
		out.Status = raffle.StatusCompleted
	case "cancelled":
		out.Status = raffle.StatusCancelled
	default:
		Error(c, http.StatusBadRequest, "status must be completed or cancelled", nil)
		return
	}
	if w := strings.TrimSpace(req.Winner); w != "" {
		if !common.IsHexAddress(w) {
			Error(c, http.StatusBadRequest, "malformed winner address", nil)
			return
		}
		addr := common.HexToAddress(w)
		out.Winner = &addr
	}

	if err := h.Svc.Resolve(c.Request.Context(), who, id, out); err != nil {
		LedgerError(c, err)
		return
	}
	p, _ := h.Svc.Core.Pool(id)
	Ok(c, viewFromPool(p), nil)
}
