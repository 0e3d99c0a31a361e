package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"raffle/internal/models"
	"raffle/internal/raffle"
	"raffle/internal/repository"
)

// Journal appends every committed ledger event to the raffle_events table.
// Publish only enqueues; Run drains in the background so the ledger lock is
// never held across a DB write.
type Journal struct {
	repo   repository.Repository
	logger *zap.Logger
	ch     chan raffle.Event

	dropped uint64
}

func NewJournal(repo repository.Repository, logger *zap.Logger) *Journal {
	return &Journal{
		repo:   repo,
		logger: logger,
		ch:     make(chan raffle.Event, 256),
	}
}

func (j *Journal) Publish(ev raffle.Event) {
	if j == nil || ev == nil {
		return
	}
	select {
	case j.ch <- ev:
	default:
		atomic.AddUint64(&j.dropped, 1)
		if j.logger != nil {
			j.logger.Warn("event journal queue full, dropping", zap.String("type", ev.EventType()))
		}
	}
}

func (j *Journal) Run(ctx context.Context) {
	if j == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-j.ch:
			j.persist(ctx, ev)
		}
	}
}

func (j *Journal) persist(ctx context.Context, ev raffle.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		if j.logger != nil {
			j.logger.Warn("event journal marshal failed", zap.String("type", ev.EventType()), zap.Error(err))
		}
		return
	}
	item := &models.RaffleEvent{
		RaffleID:  eventRaffleID(ev),
		Type:      ev.EventType(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := j.repo.InsertRaffleEvent(wctx, item); err != nil && j.logger != nil {
		j.logger.Warn("event journal insert failed", zap.String("type", ev.EventType()), zap.Error(err))
	}
}

func eventRaffleID(ev raffle.Event) *uint64 {
	var id raffle.PoolID
	switch e := ev.(type) {
	case raffle.PoolCreated:
		id = e.PoolID
	case raffle.TicketPurchased:
		id = e.PoolID
	case raffle.RaffleResolved:
		id = e.PoolID
	default:
		return nil
	}
	v := uint64(id)
	return &v
}

// Dropped reports how many events never reached the journal table.
func (j *Journal) Dropped() uint64 {
	return atomic.LoadUint64(&j.dropped)
}
