package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/msomdec/store-rating/internal/domain"
)

func ratings(values ...int) []domain.Rating {
	out := make([]domain.Rating, len(values))
	for i, v := range values {
		out[i] = domain.Rating{ID: int64(i + 1), UserID: int64(i + 1), Value: v}
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	s := domain.Summarize(nil)

	assert.Equal(t, 0.0, s.Average)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, s.Distribution)
}

func TestSummarize_TwoRaters(t *testing.T) {
	s := domain.Summarize(ratings(5, 3))

	assert.Equal(t, 4.0, s.Average)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 1}, s.Distribution)
}

func TestSummarize_DistributionSumsToCount(t *testing.T) {
	cases := [][]int{
		{1},
		{1, 1, 1},
		{2, 4, 4, 5, 1, 3, 3},
		{5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	}
	for _, values := range cases {
		s := domain.Summarize(ratings(values...))

		total := 0
		sum := 0
		for v, n := range s.Distribution {
			total += n
			sum += v * n
		}
		assert.Equal(t, len(values), total)
		assert.Equal(t, len(values), s.Count)
		assert.InDelta(t, float64(sum)/float64(len(values)), s.Average, 1e-9)
	}
}

func TestRatingBy(t *testing.T) {
	rs := ratings(4, 2, 5)

	r := domain.RatingBy(rs, 2)
	if assert.NotNil(t, r) {
		assert.Equal(t, 2, r.Value)
	}
	assert.Nil(t, domain.RatingBy(rs, 99))
}
