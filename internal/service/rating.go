package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/store-rating/internal/authz"
	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/metrics"
)

// RatingResult is the outcome of a rating submission.
type RatingResult struct {
	Rating  domain.Rating
	Created bool
	// Summary is the store's aggregate after the write.
	Summary domain.RatingSummary
}

// RatingService writes to the rating ledger.
type RatingService struct {
	stores  domain.StoreRepository
	ratings domain.RatingRepository
}

// NewRatingService creates a new RatingService.
func NewRatingService(stores domain.StoreRepository, ratings domain.RatingRepository) *RatingService {
	return &RatingService{stores: stores, ratings: ratings}
}

// SubmitInput authorizes the caller, then decodes and validates the raw
// rating before submitting it.
func (s *RatingService) SubmitInput(ctx context.Context, caller domain.Caller, storeID int64, in RatingInput) (*RatingResult, error) {
	if err := authz.Authorize(caller, authz.SubmitRating); err != nil {
		return nil, err
	}
	value, err := parseRating(in.Rating)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, caller, storeID, value)
}

// Submit creates the caller's rating for the store or replaces its value.
// Resubmitting keeps the rating's ID and creation time.
func (s *RatingService) Submit(ctx context.Context, caller domain.Caller, storeID int64, value int) (*RatingResult, error) {
	if err := authz.Authorize(caller, authz.SubmitRating); err != nil {
		return nil, err
	}
	if err := validateRating(value); err != nil {
		return nil, err
	}

	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("store %d: %w", storeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get store: %w", err)
	}

	res := &RatingResult{Rating: domain.Rating{UserID: caller.ID, StoreID: storeID, Value: value}}
	created, err := s.ratings.Upsert(ctx, &res.Rating)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("store %d: %w", storeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	res.Created = created
	metrics.RatingSubmitted(created)

	ratings, err := s.ratings.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	res.Summary = domain.Summarize(ratings)
	return res, nil
}
