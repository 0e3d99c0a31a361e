package raffle

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PoolID identifies a pool within one factory. IDs are assigned sequentially
// starting at 1 and are never reused.
type PoolID uint64

// Status is the lifecycle phase of a pool.
type Status uint8

const (
	StatusActive Status = iota
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Statuses travel as their string form in JSON.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseStatus maps the wire form back to a Status. Unknown strings map to
// StatusActive; callers validating input should check separately.
func ParseStatus(s string) Status {
	switch s {
	case "completed":
		return StatusCompleted
	case "cancelled":
		return StatusCancelled
	default:
		return StatusActive
	}
}

// Pool is a single raffle ledger. All mutation goes through the factory,
// which serializes it; reads take the pool lock directly.
type Pool struct {
	mu sync.Mutex

	id             PoolID
	creator        common.Address
	ticketPrice    decimal.Decimal
	maxTickets     uint64
	minimumTickets uint64
	prizeAmount    decimal.Decimal
	endTime        time.Time
	createdAt      time.Time
	platformWallet common.Address

	balance       decimal.Decimal
	totalSold     uint64
	ticketsByAddr map[common.Address]uint64
	participants  []common.Address

	status Status
	winner *common.Address

	now  func() time.Time
	sink EventSink
}

// Info is a point-in-time snapshot of a pool's public state.
type Info struct {
	ID                PoolID
	Creator           common.Address
	TicketPrice       decimal.Decimal
	MaxTickets        uint64
	MinimumTickets    uint64
	PrizeAmount       decimal.Decimal
	Balance           decimal.Decimal
	EndTime           time.Time
	CreatedAt         time.Time
	PlatformWallet    common.Address
	TotalTicketsSold  uint64
	TotalParticipants uint64
	Status            Status
	Winner            *common.Address
}

// Purchase reports one committed ticket purchase. NewTotal is the buyer's
// cumulative ticket count, not the pool-wide total.
type Purchase struct {
	PoolID        PoolID
	Buyer         common.Address
	Count         uint64
	NewTotal      uint64
	Paid          decimal.Decimal
	FirstPurchase bool
}

// BuyTickets commits a purchase of count tickets paid with the attached
// amount. Guards run in order: count, deadline, capacity, exact payment.
// A failed guard leaves the pool untouched.
func (p *Pool) BuyTickets(buyer common.Address, count uint64, attached decimal.Decimal) (Purchase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if count == 0 {
		return Purchase{}, ErrInvalidTicketAmount
	}
	if !p.now().Before(p.endTime) {
		return Purchase{}, ErrRaffleEnded
	}
	// Subtraction form: totalSold never exceeds maxTickets, and the count is
	// caller-controlled, so the sum must not be computed in uint64.
	if count > p.maxTickets-p.totalSold {
		return Purchase{}, ErrExceedsMaxTickets
	}
	expected := p.ticketPrice.Mul(decimal.NewFromUint64(count))
	if !attached.Equal(expected) {
		return Purchase{}, ErrInvalidPayment
	}

	first := p.ticketsByAddr[buyer] == 0
	if first {
		p.participants = append(p.participants, buyer)
	}
	p.ticketsByAddr[buyer] += count
	p.totalSold += count
	p.balance = p.balance.Add(attached)

	res := Purchase{
		PoolID:        p.id,
		Buyer:         buyer,
		Count:         count,
		NewTotal:      p.ticketsByAddr[buyer],
		Paid:          attached,
		FirstPurchase: first,
	}
	if p.sink != nil {
		p.sink.Publish(TicketPurchased{
			PoolID:   p.id,
			Buyer:    buyer,
			Count:    count,
			NewTotal: res.NewTotal,
		})
	}
	return res, nil
}

// resolve applies an end-of-life outcome. Called by the factory with its own
// authorization already checked.
func (p *Pool) resolve(out Outcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StatusActive {
		return ErrAlreadyResolved
	}
	if p.now().Before(p.endTime) {
		return ErrRaffleNotEnded
	}
	switch out.Status {
	case StatusCompleted:
		if out.Winner == nil || p.ticketsByAddr[*out.Winner] == 0 {
			return ErrInvalidWinner
		}
		w := *out.Winner
		p.winner = &w
		p.status = StatusCompleted
	case StatusCancelled:
		if out.Winner != nil {
			return ErrInvalidWinner
		}
		p.status = StatusCancelled
	default:
		return ErrInvalidWinner
	}

	if p.sink != nil {
		p.sink.Publish(RaffleResolved{PoolID: p.id, Status: p.status, Winner: p.winner})
	}
	return nil
}

// ID returns the pool's factory-assigned identifier.
func (p *Pool) ID() PoolID { return p.id }

// Creator returns the address the pool was created by.
func (p *Pool) Creator() common.Address { return p.creator }

// Info returns a consistent snapshot of the pool.
func (p *Pool) Info() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Info{
		ID:                p.id,
		Creator:           p.creator,
		TicketPrice:       p.ticketPrice,
		MaxTickets:        p.maxTickets,
		MinimumTickets:    p.minimumTickets,
		PrizeAmount:       p.prizeAmount,
		Balance:           p.balance,
		EndTime:           p.endTime,
		CreatedAt:         p.createdAt,
		PlatformWallet:    p.platformWallet,
		TotalTicketsSold:  p.totalSold,
		TotalParticipants: uint64(len(p.participants)),
		Status:            p.status,
		Winner:            p.winner,
	}
}

// Participants returns buyers in first-purchase order. The slice is a copy.
func (p *Pool) Participants() []common.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]common.Address, len(p.participants))
	copy(out, p.participants)
	return out
}

// TicketCount reports how many tickets addr holds; zero for strangers.
func (p *Pool) TicketCount(addr common.Address) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticketsByAddr[addr]
}

// TotalParticipants counts distinct buyers.
func (p *Pool) TotalParticipants() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint64(len(p.participants))
}

// IsActive reports whether the pool is unresolved and its deadline has not
// passed.
func (p *Pool) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == StatusActive && p.now().Before(p.endTime)
}

// TimeRemaining returns the time until the deadline, floored at zero.
func (p *Pool) TimeRemaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.endTime.Sub(p.now())
	if d < 0 {
		return 0
	}
	return d
}
