package repository

import (
	"context"

	"raffle/internal/models"
)

// ListRafflesParams filters and pages the raffle table. A nil filter field
// means "any". OrderBy names a column; Asc defaults to descending.
type ListRafflesParams struct {
	Creator *string
	Status  *string
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

// ListRaffleEventsParams pages the event journal, newest first by default.
type ListRaffleEventsParams struct {
	RaffleID *uint64
	Type     *string
	Limit    int
	Offset   int
	Asc      *bool
}

// Repository is the persistence surface of the raffle service. The in-memory
// ledger is authoritative; the store is write-through plus boot-time reload.
type Repository interface {
	// Platform admin policy (single row).
	GetPlatformPolicy(ctx context.Context) (*models.PlatformPolicy, error)
	UpsertPlatformPolicy(ctx context.Context, item *models.PlatformPolicy) error

	// Raffles.
	UpsertRaffle(ctx context.Context, item *models.Raffle) error
	GetRaffleByID(ctx context.Context, id uint64) (*models.Raffle, error)
	ListRaffles(ctx context.Context, params ListRafflesParams) ([]models.Raffle, error)
	CountRaffles(ctx context.Context, params ListRafflesParams) (int64, error)
	UpdateRaffleResolution(ctx context.Context, id uint64, status string, winner *string) error

	// Holdings. SaveTicketPurchase writes the raffle row and the holding row
	// in one transaction.
	SaveTicketPurchase(ctx context.Context, raffle *models.Raffle, holding *models.TicketHolding) error
	GetHolding(ctx context.Context, raffleID uint64, buyer string) (*models.TicketHolding, error)
	ListHoldingsByRaffleID(ctx context.Context, raffleID uint64) ([]models.TicketHolding, error)

	// Event journal (append only).
	InsertRaffleEvent(ctx context.Context, item *models.RaffleEvent) error
	ListRaffleEvents(ctx context.Context, params ListRaffleEventsParams) ([]models.RaffleEvent, error)
}
