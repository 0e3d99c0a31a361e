package raffle

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Event is a committed state transition announcement. Events are emitted
// after the transition is applied; a rejected operation emits nothing.
type Event interface {
	EventType() string
}

// EventSink receives committed events. Implementations must not block the
// caller for long: events are published while the emitting component holds
// its ledger lock.
type EventSink interface {
	Publish(ev Event)
}

type multiSink []EventSink

func (m multiSink) Publish(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ev)
		}
	}
}

// MultiSink fans one event out to several sinks in order.
func MultiSink(sinks ...EventSink) EventSink {
	return multiSink(sinks)
}

type PoolCreated struct {
	PoolID         PoolID          `json:"pool_id"`
	Creator        common.Address  `json:"creator"`
	TicketPrice    decimal.Decimal `json:"ticket_price"`
	MaxTickets     uint64          `json:"max_tickets"`
	MinimumTickets uint64          `json:"minimum_tickets"`
	PrizeAmount    decimal.Decimal `json:"prize_amount"`
	EndTime        time.Time       `json:"end_time"`
	PlatformWallet common.Address  `json:"platform_wallet"`
}

func (PoolCreated) EventType() string { return "pool_created" }

// TicketPurchased reports a committed purchase. NewTotal is the buyer's
// cumulative ticket count after the purchase.
type TicketPurchased struct {
	PoolID   PoolID         `json:"pool_id"`
	Buyer    common.Address `json:"buyer"`
	Count    uint64         `json:"count"`
	NewTotal uint64         `json:"new_total"`
}

func (TicketPurchased) EventType() string { return "ticket_purchased" }

type PlatformFeeUpdated struct {
	OldBps uint32 `json:"old_bps"`
	NewBps uint32 `json:"new_bps"`
}

func (PlatformFeeUpdated) EventType() string { return "platform_fee_updated" }

type PlatformWalletUpdated struct {
	OldWallet common.Address `json:"old_wallet"`
	NewWallet common.Address `json:"new_wallet"`
}

func (PlatformWalletUpdated) EventType() string { return "platform_wallet_updated" }

type FactoryPausedEvent struct{}

func (FactoryPausedEvent) EventType() string { return "factory_paused" }

type FactoryUnpausedEvent struct{}

func (FactoryUnpausedEvent) EventType() string { return "factory_unpaused" }

type RaffleResolved struct {
	PoolID PoolID          `json:"pool_id"`
	Status Status          `json:"status"`
	Winner *common.Address `json:"winner,omitempty"`
}

func (RaffleResolved) EventType() string { return "raffle_resolved" }
