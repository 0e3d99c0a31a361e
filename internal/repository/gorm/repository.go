package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"raffle/internal/models"
	"raffle/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Platform policy --------------------------------------------------------

func (s *Store) GetPlatformPolicy(ctx context.Context) (*models.PlatformPolicy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PlatformPolicy
	err := s.db.WithContext(ctx).Where("id = ?", 1).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertPlatformPolicy(ctx context.Context, item *models.PlatformPolicy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.ID = 1
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"owner",
			"payout_wallet",
			"fee_bps",
			"paused",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- Raffles ----------------------------------------------------------------

func (s *Store) UpsertRaffle(ctx context.Context, item *models.Raffle) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"custodial_balance",
			"total_tickets_sold",
			"status",
			"winner",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetRaffleByID(ctx context.Context, id uint64) (*models.Raffle, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Raffle
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) applyRaffleFilters(ctx context.Context, params repository.ListRafflesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Raffle{})
	if params.Creator != nil && strings.TrimSpace(*params.Creator) != "" {
		query = query.Where("creator = ?", strings.ToLower(strings.TrimSpace(*params.Creator)))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) ListRaffles(ctx context.Context, params repository.ListRafflesParams) ([]models.Raffle, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyOrder(s.applyRaffleFilters(ctx, params), params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Raffle
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRaffles(ctx context.Context, params repository.ListRafflesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.applyRaffleFilters(ctx, params).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) UpdateRaffleResolution(ctx context.Context, id uint64, status string, winner *string) error {
	if s == nil || s.db == nil {
		return nil
	}
	updates := map[string]any{
		"status": status,
		"winner": winner,
	}
	return s.db.WithContext(ctx).
		Model(&models.Raffle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// --- Holdings ---------------------------------------------------------------

func (s *Store) SaveTicketPurchase(ctx context.Context, raffle *models.Raffle, holding *models.TicketHolding) error {
	if s == nil || s.db == nil || raffle == nil || holding == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"custodial_balance",
				"total_tickets_sold",
				"updated_at",
			}),
		}).Create(raffle).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "raffle_id"}, {Name: "buyer"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tickets",
				"updated_at",
			}),
		}).Create(holding).Error
	})
}

func (s *Store) GetHolding(ctx context.Context, raffleID uint64, buyer string) (*models.TicketHolding, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.TicketHolding
	err := s.db.WithContext(ctx).
		Where("raffle_id = ? AND buyer = ?", raffleID, strings.ToLower(strings.TrimSpace(buyer))).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListHoldingsByRaffleID(ctx context.Context, raffleID uint64) ([]models.TicketHolding, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.TicketHolding
	if err := s.db.WithContext(ctx).
		Where("raffle_id = ?", raffleID).
		Order("first_purchase_index asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Event journal ----------------------------------------------------------

func (s *Store) InsertRaffleEvent(ctx context.Context, item *models.RaffleEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListRaffleEvents(ctx context.Context, params repository.ListRaffleEventsParams) ([]models.RaffleEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.RaffleEvent{})
	if params.RaffleID != nil {
		query = query.Where("raffle_id = ?", *params.RaffleID)
	}
	if params.Type != nil && strings.TrimSpace(*params.Type) != "" {
		query = query.Where("type = ?", strings.TrimSpace(*params.Type))
	}
	query = applyOrder(query, "id", params.Asc, "id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.RaffleEvent
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
