package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"raffle/internal/raffle"
	"raffle/internal/repository"
	"raffle/internal/service"
)

// RaffleHandler exposes single-pool reads, ticket purchase, and the
// per-pool event journal.
type RaffleHandler struct {
	Svc  *service.FactoryService
	Repo repository.Repository
}

func (h *RaffleHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/raffles/:id")
	group.GET("", h.getRaffle)
	group.POST("/tickets", h.buyTickets)
	group.GET("/participants", h.participants)
	group.GET("/tickets/:address", h.ticketCount)
	group.GET("/active", h.isActive)
	group.GET("/time-remaining", h.timeRemaining)
	group.GET("/events", h.events)
}

func (h *RaffleHandler) pool(c *gin.Context) (*raffle.Pool, bool) {
	id, ok := parsePoolID(c)
	if !ok {
		return nil, false
	}
	p, found := h.Svc.Core.Pool(id)
	if !found {
		LedgerError(c, raffle.ErrUnknownPool)
		return nil, false
	}
	return p, true
}

func (h *RaffleHandler) getRaffle(c *gin.Context) {
	p, ok := h.pool(c)
	if !ok {
		return
	}
	Ok(c, viewFromPool(p), nil)
}

type buyTicketsRequest struct {
	Count   uint64          `json:"count"`
	Payment decimal.Decimal `json:"payment"`
}

func (h *RaffleHandler) buyTickets(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req buyTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	res, err := h.Svc.BuyTickets(c.Request.Context(), id, who, req.Count, req.Payment)
	if err != nil {
		LedgerError(c, err)
		return
	}
	Ok(c, gin.H{
		"raffle_id":      uint64(res.PoolID),
		"buyer":          res.Buyer.Hex(),
		"count":          res.Count,
		"new_total":      res.NewTotal,
		"paid":           res.Paid,
		"first_purchase": res.FirstPurchase,
	}, nil)
}

func (h *RaffleHandler) participants(c *gin.Context) {
	p, ok := h.pool(c)
	if !ok {
		return
	}
	addrs := p.Participants()
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Hex())
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

func (h *RaffleHandler) ticketCount(c *gin.Context) {
	p, ok := h.pool(c)
	if !ok {
		return
	}
	addr, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}
	Ok(c, gin.H{
		"raffle_id": uint64(p.ID()),
		"address":   addr.Hex(),
		"tickets":   p.TicketCount(addr),
	}, nil)
}

func (h *RaffleHandler) isActive(c *gin.Context) {
	p, ok := h.pool(c)
	if !ok {
		return
	}
	Ok(c, gin.H{"raffle_id": uint64(p.ID()), "active": p.IsActive()}, nil)
}

func (h *RaffleHandler) timeRemaining(c *gin.Context) {
	p, ok := h.pool(c)
	if !ok {
		return
	}
	Ok(c, gin.H{
		"raffle_id":              uint64(p.ID()),
		"time_remaining_seconds": int64(p.TimeRemaining() / time.Second),
	}, nil)
}

func (h *RaffleHandler) events(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	if !h.Svc.Core.IsValidPool(id) {
		LedgerError(c, raffle.ErrUnknownPool)
		return
	}
	raffleID := uint64(id)
	limit, ok := parseUintQuery(c, "limit", 100)
	if !ok {
		return
	}
	offset, ok := parseUintQuery(c, "offset", 0)
	if !ok {
		return
	}
	items, err := h.Repo.ListRaffleEvents(c.Request.Context(), repository.ListRaffleEventsParams{
		RaffleID: &raffleID,
		Limit:    int(limit),
		Offset:   int(offset),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"limit": limit, "offset": offset})
}
