package domain

// RatingSummary holds the statistics derived from a store's ratings.
// It is never persisted.
type RatingSummary struct {
	Average      float64
	Count        int
	Distribution map[int]int // keys MinRating..MaxRating, always present
}

// Summarize computes average, count and per-value distribution over ratings.
// An empty set yields Average 0 and Count 0.
func Summarize(ratings []Rating) RatingSummary {
	dist := make(map[int]int, MaxRating-MinRating+1)
	for v := MinRating; v <= MaxRating; v++ {
		dist[v] = 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Value
		dist[r.Value]++
	}

	s := RatingSummary{Count: len(ratings), Distribution: dist}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s
}

// RatingBy returns the rating written by userID, or nil.
func RatingBy(ratings []Rating, userID int64) *Rating {
	for i := range ratings {
		if ratings[i].UserID == userID {
			return &ratings[i]
		}
	}
	return nil
}
