package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"raffle/internal/raffle"
	"raffle/internal/service"
)

// FactoryHandler exposes pool creation and the registry reads.
type FactoryHandler struct {
	Svc *service.FactoryService
}

func (h *FactoryHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.POST("/raffles", h.createRaffle)
	group.GET("/raffles", h.listRaffles)
	group.GET("/raffles/all", h.allRaffles)
	group.GET("/raffles/count", h.countRaffles)
	group.GET("/raffles/:id/valid", h.isValid)
	group.GET("/creators/:address/raffles", h.rafflesByCreator)
}

type createRaffleRequest struct {
	TicketPrice     decimal.Decimal `json:"ticket_price"`
	MaxTickets      uint64          `json:"max_tickets"`
	DurationSeconds int64           `json:"duration_seconds"`
	MinimumTickets  uint64          `json:"minimum_tickets"`
	PrizeAmount     decimal.Decimal `json:"prize_amount"`
}

func (h *FactoryHandler) createRaffle(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req createRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	info, err := h.Svc.CreateRaffle(c.Request.Context(), who, raffle.CreateRaffleParams{
		TicketPrice:    req.TicketPrice,
		MaxTickets:     req.MaxTickets,
		Duration:       time.Duration(req.DurationSeconds) * time.Second,
		MinimumTickets: req.MinimumTickets,
		PrizeAmount:    req.PrizeAmount,
	})
	if err != nil {
		LedgerError(c, err)
		return
	}
	p, _ := h.Svc.Core.Pool(info.ID)
	c.JSON(http.StatusCreated, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    viewFromPool(p),
	})
}

func (h *FactoryHandler) listRaffles(c *gin.Context) {
	offset, ok := parseUintQuery(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := parseUintQuery(c, "limit", 50)
	if !ok {
		return
	}
	ids := h.Svc.Core.PoolsPaginated(offset, limit)
	items := make([]raffleView, 0, len(ids))
	for _, id := range ids {
		if p, found := h.Svc.Core.Pool(id); found {
			items = append(items, viewFromPool(p))
		}
	}
	Ok(c, items, map[string]any{
		"offset": offset,
		"limit":  limit,
		"total":  h.Svc.Core.TotalPools(),
	})
}

func (h *FactoryHandler) allRaffles(c *gin.Context) {
	Ok(c, h.Svc.Core.AllPools(), nil)
}

func (h *FactoryHandler) countRaffles(c *gin.Context) {
	Ok(c, gin.H{"total": h.Svc.Core.TotalPools()}, nil)
}

func (h *FactoryHandler) isValid(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	Ok(c, gin.H{"id": uint64(id), "valid": h.Svc.Core.IsValidPool(id)}, nil)
}

func (h *FactoryHandler) rafflesByCreator(c *gin.Context) {
	addr, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}
	ids := h.Svc.Core.PoolsByCreator(addr)
	items := make([]raffleView, 0, len(ids))
	for _, id := range ids {
		if p, found := h.Svc.Core.Pool(id); found {
			items = append(items, viewFromPool(p))
		}
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

func parsePoolID(c *gin.Context) (raffle.PoolID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid raffle id", nil)
		return 0, false
	}
	return raffle.PoolID(id), true
}

func parseUintQuery(c *gin.Context, name string, fallback uint64) (uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	val, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return val, true
}
