package handler

import (
	"strconv"
	"time"

	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/service"
)

// UserDTO is the JSON representation of a user. The password hash is never
// exposed.
type UserDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// UserSummaryDTO is a user row of the admin listing.
type UserSummaryDTO struct {
	UserDTO
	StoreCount  int `json:"storeCount"`
	RatingCount int `json:"ratingCount"`
}

func toUserSummaryDTOs(users []domain.UserSummary) []UserSummaryDTO {
	dtos := make([]UserSummaryDTO, len(users))
	for i := range users {
		dtos[i] = UserSummaryDTO{
			UserDTO:     toUserDTO(&users[i].User),
			StoreCount:  users[i].StoreCount,
			RatingCount: users[i].RatingCount,
		}
	}
	return dtos
}

// UserRefDTO identifies a store owner or a rater.
type UserRefDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SummaryDTO is the JSON form of a rating summary. Distribution keys are the
// star values "1" to "5".
type SummaryDTO struct {
	Average      float64        `json:"averageRating"`
	Count        int            `json:"totalRatings"`
	Distribution map[string]int `json:"distribution"`
}

func toSummaryDTO(s domain.RatingSummary) SummaryDTO {
	dist := make(map[string]int, len(s.Distribution))
	for k, v := range s.Distribution {
		dist[strconv.Itoa(k)] = v
	}
	return SummaryDTO{Average: s.Average, Count: s.Count, Distribution: dist}
}

// StoreDTO is the JSON representation of a store.
type StoreDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	Owner     UserRefDTO `json:"owner"`
	CreatedAt string     `json:"createdAt"`
}

func toStoreDTO(s *domain.Store) StoreDTO {
	return StoreDTO{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Address:   s.Address,
		Owner:     UserRefDTO{ID: s.Owner.ID, Name: s.Owner.Name, Email: s.Owner.Email},
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

// StoreViewDTO is a store with its aggregate and the caller's own rating.
type StoreViewDTO struct {
	StoreDTO
	Summary    SummaryDTO `json:"summary"`
	UserRating *int       `json:"userRating"`
}

func toStoreViewDTOs(views []service.StoreView) []StoreViewDTO {
	dtos := make([]StoreViewDTO, len(views))
	for i := range views {
		dtos[i] = StoreViewDTO{
			StoreDTO: toStoreDTO(&views[i].Store),
			Summary:  toSummaryDTO(views[i].Summary),
		}
		if r := views[i].CallerRating; r != nil {
			v := r.Value
			dtos[i].UserRating = &v
		}
	}
	return dtos
}

// RatingDTO is the JSON representation of a rating.
type RatingDTO struct {
	ID        int64      `json:"id"`
	StoreID   int64      `json:"storeId"`
	UserID    int64      `json:"userId"`
	Rating    int        `json:"rating"`
	User      UserRefDTO `json:"user"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

func toRatingDTO(r *domain.Rating) RatingDTO {
	return RatingDTO{
		ID:        r.ID,
		StoreID:   r.StoreID,
		UserID:    r.UserID,
		Rating:    r.Value,
		User:      UserRefDTO{ID: r.User.ID, Name: r.User.Name, Email: r.User.Email},
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRatingDTOs(ratings []domain.Rating) []RatingDTO {
	dtos := make([]RatingDTO, len(ratings))
	for i := range ratings {
		dtos[i] = toRatingDTO(&ratings[i])
	}
	return dtos
}

// OwnedStoreDTO is one store of the owner dashboard.
type OwnedStoreDTO struct {
	StoreDTO
	Summary SummaryDTO  `json:"summary"`
	Ratings []RatingDTO `json:"ratings"`
}

func toOwnedStoreDTOs(stores []service.OwnedStore) []OwnedStoreDTO {
	dtos := make([]OwnedStoreDTO, len(stores))
	for i := range stores {
		dtos[i] = OwnedStoreDTO{
			StoreDTO: toStoreDTO(&stores[i].Store),
			Summary:  toSummaryDTO(stores[i].Summary),
			Ratings:  toRatingDTOs(stores[i].Ratings),
		}
	}
	return dtos
}
