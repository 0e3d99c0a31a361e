package service

import (
	"context"
	"sort"
	"sync"

	"raffle/internal/models"
	"raffle/internal/repository"
)

// stubRepo is an in-memory Repository for service tests.
type stubRepo struct {
	mu       sync.Mutex
	policy   *models.PlatformPolicy
	raffles  map[uint64]models.Raffle
	holdings map[uint64]map[string]models.TicketHolding
	events   []models.RaffleEvent

	failNextUpsert bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		raffles:  map[uint64]models.Raffle{},
		holdings: map[uint64]map[string]models.TicketHolding{},
	}
}

func (r *stubRepo) GetPlatformPolicy(ctx context.Context) (*models.PlatformPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.policy == nil {
		return nil, nil
	}
	cp := *r.policy
	return &cp, nil
}

func (r *stubRepo) UpsertPlatformPolicy(ctx context.Context, item *models.PlatformPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.policy = &cp
	return nil
}

func (r *stubRepo) UpsertRaffle(ctx context.Context, item *models.Raffle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextUpsert {
		r.failNextUpsert = false
		return context.DeadlineExceeded
	}
	r.raffles[item.ID] = *item
	return nil
}

func (r *stubRepo) GetRaffleByID(ctx context.Context, id uint64) (*models.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.raffles[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *stubRepo) ListRaffles(ctx context.Context, params repository.ListRafflesParams) ([]models.Raffle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint64, 0, len(r.raffles))
	for id := range r.raffles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Raffle
	for _, id := range ids {
		item := r.raffles[id]
		if params.Creator != nil && item.Creator != *params.Creator {
			continue
		}
		if params.Status != nil && item.Status != *params.Status {
			continue
		}
		out = append(out, item)
	}
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *stubRepo) CountRaffles(ctx context.Context, params repository.ListRafflesParams) (int64, error) {
	items, err := r.ListRaffles(ctx, repository.ListRafflesParams{Creator: params.Creator, Status: params.Status})
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (r *stubRepo) UpdateRaffleResolution(ctx context.Context, id uint64, status string, winner *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.raffles[id]
	if !ok {
		return nil
	}
	item.Status = status
	item.Winner = winner
	r.raffles[id] = item
	return nil
}

func (r *stubRepo) SaveTicketPurchase(ctx context.Context, raffleRow *models.Raffle, holding *models.TicketHolding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raffles[raffleRow.ID] = *raffleRow
	if r.holdings[holding.RaffleID] == nil {
		r.holdings[holding.RaffleID] = map[string]models.TicketHolding{}
	}
	r.holdings[holding.RaffleID][holding.Buyer] = *holding
	return nil
}

func (r *stubRepo) GetHolding(ctx context.Context, raffleID uint64, buyer string) (*models.TicketHolding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.holdings[raffleID][buyer]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *stubRepo) ListHoldingsByRaffleID(ctx context.Context, raffleID uint64) ([]models.TicketHolding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TicketHolding
	for _, h := range r.holdings[raffleID] {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstPurchaseIndex < out[j].FirstPurchaseIndex })
	return out, nil
}

func (r *stubRepo) InsertRaffleEvent(ctx context.Context, item *models.RaffleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *item)
	return nil
}

func (r *stubRepo) ListRaffleEvents(ctx context.Context, params repository.ListRaffleEventsParams) ([]models.RaffleEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RaffleEvent
	for _, ev := range r.events {
		if params.RaffleID != nil && (ev.RaffleID == nil || *ev.RaffleID != *params.RaffleID) {
			continue
		}
		if params.Type != nil && ev.Type != *params.Type {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
