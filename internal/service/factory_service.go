package service

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"raffle/internal/models"
	"raffle/internal/raffle"
	"raffle/internal/repository"
)

// FactoryService fronts the in-memory ledger. Every write goes to the ledger
// first; persistence is write-through and best effort, with the ledger as
// the source of truth until the next boot reload.
type FactoryService struct {
	Core   *raffle.Factory
	Repo   repository.Repository
	Logger *zap.Logger
}

func NewFactoryService(core *raffle.Factory, repo repository.Repository, logger *zap.Logger) *FactoryService {
	return &FactoryService{Core: core, Repo: repo, Logger: logger}
}

func addrString(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func addrStringPtr(a *common.Address) *string {
	if a == nil {
		return nil
	}
	s := addrString(*a)
	return &s
}

func raffleRow(info raffle.Info) *models.Raffle {
	now := time.Now().UTC()
	return &models.Raffle{
		ID:               uint64(info.ID),
		Creator:          addrString(info.Creator),
		TicketPrice:      info.TicketPrice,
		MaxTickets:       info.MaxTickets,
		MinimumTickets:   info.MinimumTickets,
		PrizeAmount:      info.PrizeAmount,
		CustodialBalance: info.Balance,
		PlatformWallet:   addrString(info.PlatformWallet),
		EndTime:          info.EndTime,
		TotalTicketsSold: info.TotalTicketsSold,
		Status:           info.Status.String(),
		Winner:           addrStringPtr(info.Winner),
		CreatedAt:        info.CreatedAt,
		UpdatedAt:        now,
	}
}

// CreateRaffle validates and creates a pool, then persists its row.
func (s *FactoryService) CreateRaffle(ctx context.Context, caller common.Address, params raffle.CreateRaffleParams) (raffle.Info, error) {
	p, err := s.Core.CreateRaffle(caller, params)
	if err != nil {
		return raffle.Info{}, err
	}
	info := p.Info()
	if err := s.Repo.UpsertRaffle(ctx, raffleRow(info)); err != nil && s.Logger != nil {
		s.Logger.Warn("raffle persist failed", zap.Uint64("raffle_id", uint64(info.ID)), zap.Error(err))
	}
	return info, nil
}

// BuyTickets commits a purchase against the pool and persists the raffle row
// together with the buyer's holding.
func (s *FactoryService) BuyTickets(ctx context.Context, poolID raffle.PoolID, buyer common.Address, count uint64, attached decimal.Decimal) (raffle.Purchase, error) {
	p, ok := s.Core.Pool(poolID)
	if !ok {
		return raffle.Purchase{}, raffle.ErrUnknownPool
	}
	res, err := p.BuyTickets(buyer, count, attached)
	if err != nil {
		return raffle.Purchase{}, err
	}

	info := p.Info()
	holding := &models.TicketHolding{
		RaffleID:           uint64(poolID),
		Buyer:              addrString(buyer),
		Tickets:            p.TicketCount(buyer),
		FirstPurchaseIndex: participantIndex(p, buyer),
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if err := s.Repo.SaveTicketPurchase(ctx, raffleRow(info), holding); err != nil && s.Logger != nil {
		s.Logger.Warn("purchase persist failed",
			zap.Uint64("raffle_id", uint64(poolID)),
			zap.String("buyer", holding.Buyer),
			zap.Error(err))
	}
	return res, nil
}

func sameWinner(stored *string, winner *common.Address) bool {
	if stored == nil || winner == nil {
		return stored == nil && winner == nil
	}
	return *stored == addrString(*winner)
}

func participantIndex(p *raffle.Pool, buyer common.Address) uint64 {
	for i, addr := range p.Participants() {
		if addr == buyer {
			return uint64(i)
		}
	}
	return 0
}

// UpdatePlatformFee changes the fee policy and persists the snapshot.
func (s *FactoryService) UpdatePlatformFee(ctx context.Context, caller common.Address, bps uint32) error {
	if err := s.Core.UpdatePlatformFee(caller, bps); err != nil {
		return err
	}
	s.persistPolicy(ctx)
	return nil
}

// UpdatePlatformWallet changes the payout wallet and persists the snapshot.
func (s *FactoryService) UpdatePlatformWallet(ctx context.Context, caller, wallet common.Address) error {
	if err := s.Core.UpdatePlatformWallet(caller, wallet); err != nil {
		return err
	}
	s.persistPolicy(ctx)
	return nil
}

// Pause halts pool creation and persists the snapshot.
func (s *FactoryService) Pause(ctx context.Context, caller common.Address) error {
	if err := s.Core.Pause(caller); err != nil {
		return err
	}
	s.persistPolicy(ctx)
	return nil
}

// Unpause re-enables pool creation and persists the snapshot.
func (s *FactoryService) Unpause(ctx context.Context, caller common.Address) error {
	if err := s.Core.Unpause(caller); err != nil {
		return err
	}
	s.persistPolicy(ctx)
	return nil
}

// Resolve records an externally determined outcome for a pool.
func (s *FactoryService) Resolve(ctx context.Context, caller common.Address, poolID raffle.PoolID, out raffle.Outcome) error {
	if err := s.Core.Resolve(caller, poolID, out); err != nil {
		return err
	}
	if err := s.Repo.UpdateRaffleResolution(ctx, uint64(poolID), out.Status.String(), addrStringPtr(out.Winner)); err != nil && s.Logger != nil {
		s.Logger.Warn("resolution persist failed", zap.Uint64("raffle_id", uint64(poolID)), zap.Error(err))
	}
	return nil
}

func (s *FactoryService) persistPolicy(ctx context.Context) {
	pol := s.Core.Policy()
	item := &models.PlatformPolicy{
		ID:           1,
		Owner:        addrString(pol.Owner),
		PayoutWallet: addrString(pol.PlatformWallet),
		FeeBps:       pol.PlatformFeeBps,
		Paused:       pol.Paused,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.UpsertPlatformPolicy(ctx, item); err != nil && s.Logger != nil {
		s.Logger.Warn("policy persist failed", zap.Error(err))
	}
}

// PersistPolicy writes the current admin policy snapshot. Called once at
// boot so a config-seeded policy reaches the store.
func (s *FactoryService) PersistPolicy(ctx context.Context) {
	s.persistPolicy(ctx)
}

// Reload rebuilds the in-memory registry from persisted raffles and
// holdings. Rows are restored in ID order so creation-order indices match.
func (s *FactoryService) Reload(ctx context.Context) error {
	asc := true
	const page = 500
	offset := 0
	restored := 0
	for {
		rows, err := s.Repo.ListRaffles(ctx, repository.ListRafflesParams{
			Limit:   page,
			Offset:  offset,
			OrderBy: "id",
			Asc:     &asc,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			break
		}
		for i := range rows {
			if err := s.restoreRow(ctx, &rows[i]); err != nil {
				return err
			}
			restored++
		}
		if len(rows) < page {
			break
		}
		offset += page
	}
	if s.Logger != nil {
		s.Logger.Info("ledger reloaded", zap.Int("raffles", restored))
	}
	return nil
}

func (s *FactoryService) restoreRow(ctx context.Context, row *models.Raffle) error {
	holdings, err := s.Repo.ListHoldingsByRaffleID(ctx, row.ID)
	if err != nil {
		return err
	}
	snap := raffle.PoolSnapshot{
		ID:             raffle.PoolID(row.ID),
		Creator:        common.HexToAddress(row.Creator),
		TicketPrice:    row.TicketPrice,
		MaxTickets:     row.MaxTickets,
		MinimumTickets: row.MinimumTickets,
		PrizeAmount:    row.PrizeAmount,
		Balance:        row.CustodialBalance,
		EndTime:        row.EndTime,
		CreatedAt:      row.CreatedAt,
		PlatformWallet: common.HexToAddress(row.PlatformWallet),
		Status:         raffle.ParseStatus(row.Status),
	}
	if row.Winner != nil {
		w := common.HexToAddress(*row.Winner)
		snap.Winner = &w
	}
	for _, h := range holdings {
		snap.Holdings = append(snap.Holdings, raffle.Holding{
			Buyer:   common.HexToAddress(h.Buyer),
			Tickets: h.Tickets,
		})
	}
	return s.Core.RestorePool(snap)
}

// Reconcile re-writes the persisted row of every pool whose stored state
// drifted from the ledger, covering writes lost to transient DB errors.
func (s *FactoryService) Reconcile(ctx context.Context) {
	for _, id := range s.Core.AllPools() {
		p, ok := s.Core.Pool(id)
		if !ok {
			continue
		}
		info := p.Info()
		stored, err := s.Repo.GetRaffleByID(ctx, uint64(id))
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("reconcile read failed", zap.Uint64("raffle_id", uint64(id)), zap.Error(err))
			}
			continue
		}
		if stored != nil &&
			stored.TotalTicketsSold == info.TotalTicketsSold &&
			stored.Status == info.Status.String() &&
			stored.CustodialBalance.Equal(info.Balance) &&
			sameWinner(stored.Winner, info.Winner) {
			continue
		}
		if err := s.Repo.UpsertRaffle(ctx, raffleRow(info)); err != nil && s.Logger != nil {
			s.Logger.Warn("reconcile write failed", zap.Uint64("raffle_id", uint64(id)), zap.Error(err))
		}
	}
}
