package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Raffle is the persisted form of one pool. The primary key is the
// ledger-assigned sequential ID, not an autoincrement.
type Raffle struct {
	ID               uint64          `gorm:"column:id;primaryKey" json:"id"`
	Creator          string          `gorm:"column:creator;type:varchar(42);index;not null" json:"creator"`
	TicketPrice      decimal.Decimal `gorm:"column:ticket_price;type:numeric(78,0);not null" json:"ticket_price"`
	MaxTickets       uint64          `gorm:"column:max_tickets;not null" json:"max_tickets"`
	MinimumTickets   uint64          `gorm:"column:minimum_tickets;not null" json:"minimum_tickets"`
	PrizeAmount      decimal.Decimal `gorm:"column:prize_amount;type:numeric(78,0);not null" json:"prize_amount"`
	CustodialBalance decimal.Decimal `gorm:"column:custodial_balance;type:numeric(78,0);not null" json:"custodial_balance"`
	PlatformWallet   string          `gorm:"column:platform_wallet;type:varchar(42);not null" json:"platform_wallet"`
	EndTime          time.Time       `gorm:"column:end_time;index;not null" json:"end_time"`
	TotalTicketsSold uint64          `gorm:"column:total_tickets_sold;not null;default:0" json:"total_tickets_sold"`
	Status           string          `gorm:"column:status;type:varchar(20);index;not null;default:'active'" json:"status"`
	Winner           *string         `gorm:"column:winner;type:varchar(42)" json:"winner,omitempty"`
	CreatedAt        time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Raffle) TableName() string { return "raffles" }
