package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
)

// Reason categorizes why a stock level changed
type Reason string

const (
	ReasonOrder      Reason = "ORDER"
	ReasonAdjustment Reason = "ADJUSTMENT"
	ReasonRestock    Reason = "RETURN_RESTOCK"
)

// IsValid checks if the reason is known
func (r Reason) IsValid() bool {
	switch r {
	case ReasonOrder, ReasonAdjustment, ReasonRestock:
		return true
	}
	return false
}

// StockEntry is one append-only ledger row recording a stock movement.
// NewStock always equals PreviousStock + Change; entries are never updated
// or deleted, so the ledger replays to the current stock level.
type StockEntry struct {
	shared.BaseEntity
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID       uuid.UUID `gorm:"type:uuid;not null"`
	Change        int       `gorm:"not null"`
	PreviousStock int       `gorm:"not null"`
	NewStock      int       `gorm:"not null"`
	Reason        Reason    `gorm:"type:varchar(30);not null"`
	Reference     string    `gorm:"type:varchar(100)"`
	OccurredAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewStockEntry records a stock movement. Change must be non-zero and the
// resulting stock level must not go negative.
func NewStockEntry(productID, actorID uuid.UUID, change, previousStock int, reason Reason, reference string) (*StockEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if change == 0 {
		return nil, shared.NewDomainError("INVALID_CHANGE", "Stock change cannot be zero")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown stock change reason")
	}
	newStock := previousStock + change
	if newStock < 0 {
		return nil, shared.ErrInsufficientStock
	}

	return &StockEntry{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		ActorID:       actorID,
		Change:        change,
		PreviousStock: previousStock,
		NewStock:      newStock,
		Reason:        reason,
		Reference:     reference,
		OccurredAt:    time.Now(),
	}, nil
}

// StockEntryRepository defines the persistence interface for the stock ledger
type StockEntryRepository interface {
	Save(ctx context.Context, entry *StockEntry) error
	SaveAll(ctx context.Context, entries []*StockEntry) error
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[StockEntry], error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[StockEntry], error)
}
