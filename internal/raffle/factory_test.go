package raffle

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	payout   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	creator1 = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	creator2 = common.HexToAddress("0x00000000000000000000000000000000000000c4")
	buyer1   = common.HexToAddress("0x00000000000000000000000000000000000000d5")
	buyer2   = common.HexToAddress("0x00000000000000000000000000000000000000d6")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000e7")
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type captureSink struct {
	events []Event
}

func (s *captureSink) Publish(ev Event) { s.events = append(s.events, ev) }

func (s *captureSink) last(t *testing.T) Event {
	t.Helper()
	if len(s.events) == 0 {
		t.Fatalf("no events published")
	}
	return s.events[len(s.events)-1]
}

func newTestFactory(t *testing.T) (*Factory, *fakeClock, *captureSink) {
	t.Helper()
	clk := newFakeClock()
	sink := &captureSink{}
	f, err := New(Config{
		Owner:          owner,
		PlatformWallet: payout,
		PlatformFeeBps: 500,
		Clock:          clk.Now,
		Sink:           sink,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f, clk, sink
}

func validParams() CreateRaffleParams {
	return CreateRaffleParams{
		TicketPrice:    decimal.NewFromInt(1_000_000),
		MaxTickets:     100,
		Duration:       24 * time.Hour,
		MinimumTickets: 10,
		PrizeAmount:    decimal.NewFromInt(50_000_000),
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name    string
		wallet  common.Address
		feeBps  uint32
		wantErr error
	}{
		{"zero wallet", common.Address{}, 500, ErrInvalidPlatformWallet},
		{"fee over cap", payout, 1001, ErrInvalidPlatformFee},
		{"fee at cap", payout, 1000, nil},
		{"fee zero", payout, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Config{Owner: owner, PlatformWallet: tc.wallet, PlatformFeeBps: tc.feeBps})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("New err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateRaffleValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*CreateRaffleParams)
		wantErr error
	}{
		{"valid", func(p *CreateRaffleParams) {}, nil},
		{"zero price", func(p *CreateRaffleParams) { p.TicketPrice = decimal.Zero }, ErrInvalidTicketPrice},
		{"negative price", func(p *CreateRaffleParams) { p.TicketPrice = decimal.NewFromInt(-1) }, ErrInvalidTicketPrice},
		{"fractional price", func(p *CreateRaffleParams) { p.TicketPrice = decimal.NewFromFloat(1.5) }, ErrInvalidTicketPrice},
		{"capacity zero", func(p *CreateRaffleParams) { p.MaxTickets = 0 }, ErrInvalidMaxTickets},
		{"capacity one", func(p *CreateRaffleParams) { p.MaxTickets = 1 }, ErrInvalidMaxTickets},
		{"capacity two", func(p *CreateRaffleParams) { p.MaxTickets = 2; p.MinimumTickets = 2 }, nil},
		{"duration below min", func(p *CreateRaffleParams) { p.Duration = MinDuration - time.Second }, ErrInvalidDuration},
		{"duration at min", func(p *CreateRaffleParams) { p.Duration = MinDuration }, nil},
		{"duration at max", func(p *CreateRaffleParams) { p.Duration = MaxDuration }, nil},
		{"duration above max", func(p *CreateRaffleParams) { p.Duration = MaxDuration + time.Second }, ErrInvalidDuration},
		{"minimum zero", func(p *CreateRaffleParams) { p.MinimumTickets = 0 }, ErrInvalidMinimumTickets},
		{"minimum above capacity", func(p *CreateRaffleParams) { p.MinimumTickets = p.MaxTickets + 1 }, ErrInvalidMinimumTickets},
		{"minimum equals capacity", func(p *CreateRaffleParams) { p.MinimumTickets = p.MaxTickets }, nil},
		{"zero prize", func(p *CreateRaffleParams) { p.PrizeAmount = decimal.Zero }, ErrInvalidPrizeAmount},
		{"fractional prize", func(p *CreateRaffleParams) { p.PrizeAmount = decimal.NewFromFloat(0.5) }, ErrInvalidPrizeAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, _, _ := newTestFactory(t)
			params := validParams()
			tc.mutate(&params)
			_, err := f.CreateRaffle(creator1, params)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("CreateRaffle err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateRaffleRejectionLeavesNoTrace(t *testing.T) {
	f, _, sink := newTestFactory(t)
	params := validParams()
	params.MaxTickets = 1
	if _, err := f.CreateRaffle(creator1, params); !errors.Is(err, ErrInvalidMaxTickets) {
		t.Fatalf("err = %v, want ErrInvalidMaxTickets", err)
	}
	if got := f.TotalPools(); got != 0 {
		t.Fatalf("TotalPools = %d after rejection, want 0", got)
	}
	if len(f.PoolsByCreator(creator1)) != 0 {
		t.Fatalf("creator index grew after rejection")
	}
	if len(sink.events) != 0 {
		t.Fatalf("events published after rejection: %v", sink.events)
	}
}

func TestCreateRaffleAssignsSequentialIDsAndIndexes(t *testing.T) {
	f, clk, sink := newTestFactory(t)

	p1, err := f.CreateRaffle(creator1, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle #1: %v", err)
	}
	p2, err := f.CreateRaffle(creator2, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle #2: %v", err)
	}
	p3, err := f.CreateRaffle(creator1, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle #3: %v", err)
	}

	if p1.ID() != 1 || p2.ID() != 2 || p3.ID() != 3 {
		t.Fatalf("IDs = %d,%d,%d, want 1,2,3", p1.ID(), p2.ID(), p3.ID())
	}
	if got := f.TotalPools(); got != 3 {
		t.Fatalf("TotalPools = %d, want 3", got)
	}
	all := f.AllPools()
	if len(all) != 3 || all[0] != 1 || all[1] != 2 || all[2] != 3 {
		t.Fatalf("AllPools = %v", all)
	}
	mine := f.PoolsByCreator(creator1)
	if len(mine) != 2 || mine[0] != 1 || mine[1] != 3 {
		t.Fatalf("PoolsByCreator(creator1) = %v, want [1 3]", mine)
	}
	if got := f.PoolsByCreator(stranger); len(got) != 0 {
		t.Fatalf("PoolsByCreator(stranger) = %v, want empty", got)
	}
	if !f.IsValidPool(2) {
		t.Fatalf("IsValidPool(2) = false")
	}
	if f.IsValidPool(99) {
		t.Fatalf("IsValidPool(99) = true")
	}

	info := p1.Info()
	if info.Creator != creator1 {
		t.Fatalf("creator = %s, want %s", info.Creator, creator1)
	}
	if info.PlatformWallet != payout {
		t.Fatalf("platform wallet = %s, want %s", info.PlatformWallet, payout)
	}
	wantEnd := clk.Now().Add(24 * time.Hour)
	if !info.EndTime.Equal(wantEnd) {
		t.Fatalf("endTime = %s, want %s", info.EndTime, wantEnd)
	}
	if info.Status != StatusActive {
		t.Fatalf("status = %s, want active", info.Status)
	}

	ev, ok := sink.events[0].(PoolCreated)
	if !ok {
		t.Fatalf("first event %T, want PoolCreated", sink.events[0])
	}
	if ev.PoolID != 1 || ev.Creator != creator1 || ev.MaxTickets != 100 {
		t.Fatalf("PoolCreated = %+v", ev)
	}
}

func TestPoolsPaginated(t *testing.T) {
	f, _, _ := newTestFactory(t)
	for i := 0; i < 5; i++ {
		if _, err := f.CreateRaffle(creator1, validParams()); err != nil {
			t.Fatalf("CreateRaffle: %v", err)
		}
	}

	cases := []struct {
		name          string
		offset, limit uint64
		want          []PoolID
	}{
		{"full window", 0, 5, []PoolID{1, 2, 3, 4, 5}},
		{"middle", 1, 2, []PoolID{2, 3}},
		{"clipped", 3, 10, []PoolID{4, 5}},
		{"offset at end", 5, 2, []PoolID{}},
		{"offset past end", 10, 2, []PoolID{}},
		{"zero limit", 0, 0, []PoolID{}},
		// offset+limit would wrap in uint64; the window must clip, not panic.
		{"max limit", 0, math.MaxUint64, []PoolID{1, 2, 3, 4, 5}},
		{"max limit mid offset", 3, math.MaxUint64, []PoolID{4, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.PoolsPaginated(tc.offset, tc.limit)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("page = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestUpdatePlatformFee(t *testing.T) {
	f, _, sink := newTestFactory(t)

	if err := f.UpdatePlatformFee(stranger, 100); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner err = %v, want ErrUnauthorized", err)
	}
	// Unauthorized wins even when the value is also invalid.
	if err := f.UpdatePlatformFee(stranger, 5000); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner invalid err = %v, want ErrUnauthorized", err)
	}
	if err := f.UpdatePlatformFee(owner, 1001); !errors.Is(err, ErrInvalidPlatformFee) {
		t.Fatalf("over-cap err = %v, want ErrInvalidPlatformFee", err)
	}
	if err := f.UpdatePlatformFee(owner, 1000); err != nil {
		t.Fatalf("at-cap err = %v", err)
	}
	if got := f.Policy().PlatformFeeBps; got != 1000 {
		t.Fatalf("fee = %d, want 1000", got)
	}
	ev, ok := sink.last(t).(PlatformFeeUpdated)
	if !ok || ev.OldBps != 500 || ev.NewBps != 1000 {
		t.Fatalf("event = %#v, want PlatformFeeUpdated 500->1000", sink.last(t))
	}
}

func TestUpdatePlatformWalletAffectsOnlyLaterPools(t *testing.T) {
	f, _, sink := newTestFactory(t)

	before, err := f.CreateRaffle(creator1, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle: %v", err)
	}

	next := common.HexToAddress("0x00000000000000000000000000000000000000f8")
	if err := f.UpdatePlatformWallet(stranger, next); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner err = %v, want ErrUnauthorized", err)
	}
	if err := f.UpdatePlatformWallet(owner, common.Address{}); !errors.Is(err, ErrInvalidPlatformWallet) {
		t.Fatalf("zero wallet err = %v, want ErrInvalidPlatformWallet", err)
	}
	if err := f.UpdatePlatformWallet(owner, next); err != nil {
		t.Fatalf("UpdatePlatformWallet: %v", err)
	}

	after, err := f.CreateRaffle(creator1, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle: %v", err)
	}
	if got := before.Info().PlatformWallet; got != payout {
		t.Fatalf("pre-update pool wallet = %s, want snapshot %s", got, payout)
	}
	if got := after.Info().PlatformWallet; got != next {
		t.Fatalf("post-update pool wallet = %s, want %s", got, next)
	}
	found := false
	for _, e := range sink.events {
		if ev, ok := e.(PlatformWalletUpdated); ok {
			found = true
			if ev.OldWallet != payout || ev.NewWallet != next {
				t.Fatalf("PlatformWalletUpdated = %+v", ev)
			}
		}
	}
	if !found {
		t.Fatalf("PlatformWalletUpdated not published")
	}
}

func TestPauseUnpause(t *testing.T) {
	f, _, sink := newTestFactory(t)

	if err := f.Pause(stranger); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner pause err = %v", err)
	}
	if err := f.Pause(owner); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if _, err := f.CreateRaffle(creator1, validParams()); !errors.Is(err, ErrFactoryPaused) {
		t.Fatalf("create while paused err = %v, want ErrFactoryPaused", err)
	}

	// Re-pausing succeeds but stays silent.
	n := len(sink.events)
	if err := f.Pause(owner); err != nil {
		t.Fatalf("second Pause: %v", err)
	}
	if len(sink.events) != n {
		t.Fatalf("duplicate pause published an event")
	}

	if err := f.Unpause(owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if _, err := f.CreateRaffle(creator1, validParams()); err != nil {
		t.Fatalf("create after unpause: %v", err)
	}

	n = len(sink.events)
	if err := f.Unpause(owner); err != nil {
		t.Fatalf("second Unpause: %v", err)
	}
	if len(sink.events) != n {
		t.Fatalf("duplicate unpause published an event")
	}
}

func TestResolve(t *testing.T) {
	f, clk, sink := newTestFactory(t)
	p, err := f.CreateRaffle(creator1, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle: %v", err)
	}
	price := validParams().TicketPrice
	if _, err := p.BuyTickets(buyer1, 3, price.Mul(decimal.NewFromInt(3))); err != nil {
		t.Fatalf("BuyTickets: %v", err)
	}

	completed := Outcome{Status: StatusCompleted, Winner: &buyer1}

	if err := f.Resolve(stranger, p.ID(), completed); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner err = %v, want ErrUnauthorized", err)
	}
	if err := f.Resolve(owner, 99, completed); !errors.Is(err, ErrUnknownPool) {
		t.Fatalf("unknown pool err = %v, want ErrUnknownPool", err)
	}
	if err := f.Resolve(owner, p.ID(), completed); !errors.Is(err, ErrRaffleNotEnded) {
		t.Fatalf("before deadline err = %v, want ErrRaffleNotEnded", err)
	}

	clk.Advance(25 * time.Hour)

	if err := f.Resolve(owner, p.ID(), Outcome{Status: StatusCompleted, Winner: &stranger}); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("ticketless winner err = %v, want ErrInvalidWinner", err)
	}
	if err := f.Resolve(owner, p.ID(), Outcome{Status: StatusCompleted}); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("missing winner err = %v, want ErrInvalidWinner", err)
	}
	if err := f.Resolve(owner, p.ID(), Outcome{Status: StatusCancelled, Winner: &buyer1}); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("cancelled with winner err = %v, want ErrInvalidWinner", err)
	}

	if err := f.Resolve(owner, p.ID(), completed); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	info := p.Info()
	if info.Status != StatusCompleted || info.Winner == nil || *info.Winner != buyer1 {
		t.Fatalf("resolved info = %+v", info)
	}
	if err := f.Resolve(owner, p.ID(), completed); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second resolve err = %v, want ErrAlreadyResolved", err)
	}
	ev, ok := sink.last(t).(RaffleResolved)
	if !ok || ev.PoolID != p.ID() || ev.Status != StatusCompleted {
		t.Fatalf("last event = %#v", sink.last(t))
	}
}

func TestResolveCancelled(t *testing.T) {
	f, clk, _ := newTestFactory(t)
	p, err := f.CreateRaffle(creator1, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle: %v", err)
	}
	clk.Advance(25 * time.Hour)
	if err := f.Resolve(owner, p.ID(), Outcome{Status: StatusCancelled}); err != nil {
		t.Fatalf("Resolve cancelled: %v", err)
	}
	info := p.Info()
	if info.Status != StatusCancelled || info.Winner != nil {
		t.Fatalf("info = %+v, want cancelled without winner", info)
	}
}

func TestRestorePool(t *testing.T) {
	f, clk, _ := newTestFactory(t)

	end := clk.Now().Add(2 * time.Hour)
	snap := PoolSnapshot{
		ID:             7,
		Creator:        creator1,
		TicketPrice:    decimal.NewFromInt(10),
		MaxTickets:     50,
		MinimumTickets: 5,
		PrizeAmount:    decimal.NewFromInt(400),
		Balance:        decimal.NewFromInt(80),
		EndTime:        end,
		CreatedAt:      clk.Now().Add(-time.Hour),
		PlatformWallet: payout,
		Status:         StatusActive,
		Holdings: []Holding{
			{Buyer: buyer1, Tickets: 5},
			{Buyer: buyer2, Tickets: 3},
		},
	}
	if err := f.RestorePool(snap); err != nil {
		t.Fatalf("RestorePool: %v", err)
	}
	if err := f.RestorePool(snap); !errors.Is(err, ErrDuplicatePool) {
		t.Fatalf("duplicate restore err = %v, want ErrDuplicatePool", err)
	}

	p, ok := f.Pool(7)
	if !ok {
		t.Fatalf("restored pool missing")
	}
	if got := p.TicketCount(buyer1); got != 5 {
		t.Fatalf("buyer1 tickets = %d, want 5", got)
	}
	parts := p.Participants()
	if len(parts) != 2 || parts[0] != buyer1 || parts[1] != buyer2 {
		t.Fatalf("participants = %v", parts)
	}
	if got := p.Info().TotalTicketsSold; got != 8 {
		t.Fatalf("sold = %d, want 8", got)
	}

	// The ID counter continues past restored pools.
	np, err := f.CreateRaffle(creator2, validParams())
	if err != nil {
		t.Fatalf("CreateRaffle after restore: %v", err)
	}
	if np.ID() != 8 {
		t.Fatalf("next ID = %d, want 8", np.ID())
	}
}
