package raffle

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	// Duration bounds for new pools.
	MinDuration = time.Hour
	MaxDuration = 720 * time.Hour

	// MaxPlatformFeeBps caps the fee at 10%.
	MaxPlatformFeeBps = 1000
)

// Clock supplies the current time. The zero value of Config uses the real
// clock.
type Clock func() time.Time

// Config carries the admin policy a factory starts with.
type Config struct {
	Owner          common.Address
	PlatformWallet common.Address
	PlatformFeeBps uint32
	Paused         bool
	Clock          Clock
	Sink           EventSink
}

// Factory owns the pool registry and the platform admin policy. All methods
// are safe for concurrent use.
type Factory struct {
	mu sync.Mutex

	owner          common.Address
	platformWallet common.Address
	platformFeeBps uint32
	paused         bool

	nextID    PoolID
	byID      map[PoolID]*Pool
	order     []PoolID
	byCreator map[common.Address][]PoolID

	now  Clock
	sink EventSink
}

// CreateRaffleParams are the caller-supplied pool parameters.
type CreateRaffleParams struct {
	TicketPrice    decimal.Decimal
	MaxTickets     uint64
	Duration       time.Duration
	MinimumTickets uint64
	PrizeAmount    decimal.Decimal
}

// Outcome is the externally determined end state of a pool.
type Outcome struct {
	Status Status
	Winner *common.Address
}

// New validates the starting policy and returns an empty factory.
func New(cfg Config) (*Factory, error) {
	if cfg.PlatformWallet == (common.Address{}) {
		return nil, ErrInvalidPlatformWallet
	}
	if cfg.PlatformFeeBps > MaxPlatformFeeBps {
		return nil, ErrInvalidPlatformFee
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Factory{
		owner:          cfg.Owner,
		platformWallet: cfg.PlatformWallet,
		platformFeeBps: cfg.PlatformFeeBps,
		paused:         cfg.Paused,
		nextID:         1,
		byID:           make(map[PoolID]*Pool),
		byCreator:      make(map[common.Address][]PoolID),
		now:            now,
		sink:           cfg.Sink,
	}, nil
}

// positiveInteger reports whether d is a whole number greater than zero.
// Amounts are denominated in the smallest currency unit, so fractional
// values are never valid.
func positiveInteger(d decimal.Decimal) bool {
	return d.IsPositive() && d.IsInteger()
}

// CreateRaffle validates params in a fixed order, then instantiates a pool
// bound to the caller and the current payout wallet. Either every registry
// structure is updated or none is.
func (f *Factory) CreateRaffle(caller common.Address, params CreateRaffleParams) (*Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.paused {
		return nil, ErrFactoryPaused
	}
	if !positiveInteger(params.TicketPrice) {
		return nil, ErrInvalidTicketPrice
	}
	if params.MaxTickets < 2 {
		return nil, ErrInvalidMaxTickets
	}
	if params.Duration < MinDuration || params.Duration > MaxDuration {
		return nil, ErrInvalidDuration
	}
	if params.MinimumTickets < 1 || params.MinimumTickets > params.MaxTickets {
		return nil, ErrInvalidMinimumTickets
	}
	if !positiveInteger(params.PrizeAmount) {
		return nil, ErrInvalidPrizeAmount
	}

	createdAt := f.now()
	p := &Pool{
		id:             f.nextID,
		creator:        caller,
		ticketPrice:    params.TicketPrice,
		maxTickets:     params.MaxTickets,
		minimumTickets: params.MinimumTickets,
		prizeAmount:    params.PrizeAmount,
		endTime:        createdAt.Add(params.Duration),
		createdAt:      createdAt,
		platformWallet: f.platformWallet,
		balance:        decimal.Zero,
		ticketsByAddr:  make(map[common.Address]uint64),
		status:         StatusActive,
		now:            f.now,
		sink:           f.sink,
	}
	f.nextID++
	f.byID[p.id] = p
	f.order = append(f.order, p.id)
	f.byCreator[caller] = append(f.byCreator[caller], p.id)

	if f.sink != nil {
		f.sink.Publish(PoolCreated{
			PoolID:         p.id,
			Creator:        caller,
			TicketPrice:    params.TicketPrice,
			MaxTickets:     params.MaxTickets,
			MinimumTickets: params.MinimumTickets,
			PrizeAmount:    params.PrizeAmount,
			EndTime:        p.endTime,
			PlatformWallet: p.platformWallet,
		})
	}
	return p, nil
}

// UpdatePlatformFee sets the fee for future accounting. Owner only.
func (f *Factory) UpdatePlatformFee(caller common.Address, bps uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.owner {
		return ErrUnauthorized
	}
	if bps > MaxPlatformFeeBps {
		return ErrInvalidPlatformFee
	}
	old := f.platformFeeBps
	f.platformFeeBps = bps
	if f.sink != nil {
		f.sink.Publish(PlatformFeeUpdated{OldBps: old, NewBps: bps})
	}
	return nil
}

// UpdatePlatformWallet changes the payout wallet for pools created after the
// change; existing pools keep their snapshot. Owner only.
func (f *Factory) UpdatePlatformWallet(caller, wallet common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.owner {
		return ErrUnauthorized
	}
	if wallet == (common.Address{}) {
		return ErrInvalidPlatformWallet
	}
	old := f.platformWallet
	f.platformWallet = wallet
	if f.sink != nil {
		f.sink.Publish(PlatformWalletUpdated{OldWallet: old, NewWallet: wallet})
	}
	return nil
}

// Pause stops pool creation. Pausing an already paused factory succeeds
// without emitting an event.
func (f *Factory) Pause(caller common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.owner {
		return ErrUnauthorized
	}
	if f.paused {
		return nil
	}
	f.paused = true
	if f.sink != nil {
		f.sink.Publish(FactoryPausedEvent{})
	}
	return nil
}

// Unpause re-enables pool creation. Idempotent like Pause.
func (f *Factory) Unpause(caller common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if caller != f.owner {
		return ErrUnauthorized
	}
	if !f.paused {
		return nil
	}
	f.paused = false
	if f.sink != nil {
		f.sink.Publish(FactoryUnpausedEvent{})
	}
	return nil
}

// Resolve applies an externally determined outcome to a pool. Owner only;
// the pool enforces the deadline and once-only rules.
func (f *Factory) Resolve(caller common.Address, id PoolID, out Outcome) error {
	f.mu.Lock()
	if caller != f.owner {
		f.mu.Unlock()
		return ErrUnauthorized
	}
	p, ok := f.byID[id]
	f.mu.Unlock()
	if !ok {
		return ErrUnknownPool
	}
	return p.resolve(out)
}

// Pool looks up a pool by ID.
func (f *Factory) Pool(id PoolID) (*Pool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	return p, ok
}

// IsValidPool reports whether the factory created the pool.
func (f *Factory) IsValidPool(id PoolID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok
}

// TotalPools counts all pools ever created.
func (f *Factory) TotalPools() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.order))
}

// AllPools returns every pool ID in creation order.
func (f *Factory) AllPools() []PoolID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PoolID, len(f.order))
	copy(out, f.order)
	return out
}

// PoolsByCreator returns the creator's pool IDs in creation order. Unknown
// creators get an empty slice.
func (f *Factory) PoolsByCreator(creator common.Address) []PoolID {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.byCreator[creator]
	out := make([]PoolID, len(ids))
	copy(out, ids)
	return out
}

// PoolsPaginated returns a window of the global creation-order list. An
// offset past the end or a zero limit yields an empty slice; a window
// running past the end is clipped.
func (f *Factory) PoolsPaginated(offset, limit uint64) []PoolID {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := uint64(len(f.order))
	if offset >= n || limit == 0 {
		return []PoolID{}
	}
	// Compare against the remaining span; offset+limit can wrap in uint64.
	end := n
	if limit < n-offset {
		end = offset + limit
	}
	out := make([]PoolID, end-offset)
	copy(out, f.order[offset:end])
	return out
}

// Policy is the current admin policy snapshot.
type Policy struct {
	Owner          common.Address
	PlatformWallet common.Address
	PlatformFeeBps uint32
	Paused         bool
}

// Policy returns the factory's current admin policy.
func (f *Factory) Policy() Policy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Policy{
		Owner:          f.owner,
		PlatformWallet: f.platformWallet,
		PlatformFeeBps: f.platformFeeBps,
		Paused:         f.paused,
	}
}

// Holding is one buyer's position used when restoring a pool.
type Holding struct {
	Buyer   common.Address
	Tickets uint64
}

// PoolSnapshot is the persisted form of a pool, sufficient to rebuild it.
// Holdings must be in first-purchase order.
type PoolSnapshot struct {
	ID             PoolID
	Creator        common.Address
	TicketPrice    decimal.Decimal
	MaxTickets     uint64
	MinimumTickets uint64
	PrizeAmount    decimal.Decimal
	Balance        decimal.Decimal
	EndTime        time.Time
	CreatedAt      time.Time
	PlatformWallet common.Address
	Status         Status
	Winner         *common.Address
	Holdings       []Holding
}

// RestorePool reinserts a persisted pool into the registry without emitting
// events. Used at boot; snapshots must arrive in creation order.
func (f *Factory) RestorePool(s PoolSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.byID[s.ID]; exists {
		return ErrDuplicatePool
	}
	p := &Pool{
		id:             s.ID,
		creator:        s.Creator,
		ticketPrice:    s.TicketPrice,
		maxTickets:     s.MaxTickets,
		minimumTickets: s.MinimumTickets,
		prizeAmount:    s.PrizeAmount,
		balance:        s.Balance,
		endTime:        s.EndTime,
		createdAt:      s.CreatedAt,
		platformWallet: s.PlatformWallet,
		ticketsByAddr:  make(map[common.Address]uint64, len(s.Holdings)),
		status:         s.Status,
		winner:         s.Winner,
		now:            f.now,
		sink:           f.sink,
	}
	var sold uint64
	for _, h := range s.Holdings {
		if h.Tickets == 0 {
			continue
		}
		p.ticketsByAddr[h.Buyer] = h.Tickets
		p.participants = append(p.participants, h.Buyer)
		sold += h.Tickets
	}
	p.totalSold = sold

	f.byID[p.id] = p
	f.order = append(f.order, p.id)
	f.byCreator[p.creator] = append(f.byCreator[p.creator], p.id)
	if p.id >= f.nextID {
		f.nextID = p.id + 1
	}
	return nil
}
