package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"raffle/internal/raffle"
)

// raffleView is the JSON shape of a pool snapshot.
type raffleView struct {
	ID                uint64          `json:"id"`
	Creator           string          `json:"creator"`
	TicketPrice       decimal.Decimal `json:"ticket_price"`
	MaxTickets        uint64          `json:"max_tickets"`
	MinimumTickets    uint64          `json:"minimum_tickets"`
	PrizeAmount       decimal.Decimal `json:"prize_amount"`
	CustodialBalance  decimal.Decimal `json:"custodial_balance"`
	PlatformWallet    string          `json:"platform_wallet"`
	EndTime           time.Time       `json:"end_time"`
	CreatedAt         time.Time       `json:"created_at"`
	TotalTicketsSold  uint64          `json:"total_tickets_sold"`
	TotalParticipants uint64          `json:"total_participants"`
	Status            string          `json:"status"`
	Winner            *string         `json:"winner,omitempty"`
	IsActive          bool            `json:"is_active"`
	TimeRemainingSec  int64           `json:"time_remaining_seconds"`
}

func viewFromPool(p *raffle.Pool) raffleView {
	info := p.Info()
	v := raffleView{
		ID:                uint64(info.ID),
		Creator:           info.Creator.Hex(),
		TicketPrice:       info.TicketPrice,
		MaxTickets:        info.MaxTickets,
		MinimumTickets:    info.MinimumTickets,
		PrizeAmount:       info.PrizeAmount,
		CustodialBalance:  info.Balance,
		PlatformWallet:    info.PlatformWallet.Hex(),
		EndTime:           info.EndTime,
		CreatedAt:         info.CreatedAt,
		TotalTicketsSold:  info.TotalTicketsSold,
		TotalParticipants: info.TotalParticipants,
		Status:            info.Status.String(),
		IsActive:          p.IsActive(),
		TimeRemainingSec:  int64(p.TimeRemaining() / time.Second),
	}
	if info.Winner != nil {
		w := info.Winner.Hex()
		v.Winner = &w
	}
	return v
}
