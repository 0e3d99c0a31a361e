package models

import "time"

// PlatformPolicy is a single-row snapshot of the factory admin state.
// ID is always 1.
type PlatformPolicy struct {
	ID           uint64    `gorm:"column:id;primaryKey" json:"id"`
	Owner        string    `gorm:"column:owner;type:varchar(42);not null" json:"owner"`
	PayoutWallet string    `gorm:"column:payout_wallet;type:varchar(42);not null" json:"payout_wallet"`
	FeeBps       uint32    `gorm:"column:fee_bps;not null" json:"fee_bps"`
	Paused       bool      `gorm:"column:paused;not null;default:false" json:"paused"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PlatformPolicy) TableName() string { return "platform_policy" }
