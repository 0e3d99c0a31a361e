package models

import (
	"time"

	"gorm.io/datatypes"
)

// RaffleEvent is one row of the append-only event journal. Factory-level
// events (fee, wallet, pause) carry a NULL raffle_id.
type RaffleEvent struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RaffleID  *uint64        `gorm:"column:raffle_id;index" json:"raffle_id,omitempty"`
	Type      string         `gorm:"column:type;type:varchar(40);index;not null" json:"type"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	CreatedAt time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (RaffleEvent) TableName() string { return "raffle_events" }
