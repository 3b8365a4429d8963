package promotion

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
)

// OfferRepository defines the persistence interface for offers
type OfferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	FindByCode(ctx context.Context, code string) (*Offer, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Offer], error)
	FindActive(ctx context.Context) ([]Offer, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, offer *Offer) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementRedemptions bumps the redemption counter with a conditional
	// update that respects MaxRedemptions, returning
	// shared.ErrAlreadyExists-style conflict when the cap is hit.
	IncrementRedemptions(ctx context.Context, id uuid.UUID) error
}
