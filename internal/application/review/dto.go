package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/review"
)

// CreateReviewRequest posts a rating for a purchased product
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// UpdateReviewRequest edits the author's own review
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ReviewListFilter pages through a product's reviews
type ReviewListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// ReviewResponse is the public view of a review
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToReviewResponse maps a review to its public view
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToReviewResponses maps a slice of reviews
func ToReviewResponses(reviews []review.Review) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(reviews))
	for idx := range reviews {
		responses = append(responses, ToReviewResponse(&reviews[idx]))
	}
	return responses
}
