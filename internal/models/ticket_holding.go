package models

import "time"

// TicketHolding is one buyer's cumulative position in one raffle.
// FirstPurchaseIndex preserves the participant ordering: the n-th distinct
// buyer of a raffle gets index n, starting at 0.
type TicketHolding struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RaffleID           uint64    `gorm:"column:raffle_id;uniqueIndex:uniq_raffle_buyer;not null" json:"raffle_id"`
	Buyer              string    `gorm:"column:buyer;type:varchar(42);uniqueIndex:uniq_raffle_buyer;not null" json:"buyer"`
	Tickets            uint64    `gorm:"column:tickets;not null" json:"tickets"`
	FirstPurchaseIndex uint64    `gorm:"column:first_purchase_index;not null" json:"first_purchase_index"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (TicketHolding) TableName() string { return "ticket_holdings" }
