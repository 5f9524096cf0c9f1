package biometric

import (
	"math"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/logger"
)

// IdentityMatcher finds the closest enrolled identity to a query embedding.
//
// Dimension is the expected vector length. When zero the query's own length is
// used and only catalog entries of that length are considered.
type IdentityMatcher struct {
	Dimension int
	Threshold float64
}

func NewIdentityMatcher(dimension int) IdentityMatcher {
	return IdentityMatcher{Dimension: dimension, Threshold: constants.MATCH_THRESHOLD}
}

// Match returns the best candidate whose similarity strictly exceeds the
// threshold. On a miss MatchedID is nil and Similarity is the best seen.
// Ties keep the earliest catalog entry.
func (m IdentityMatcher) Match(query []float32, catalog []entities.EnrolledIdentity) (types.MatchResult, error) {
	dim := m.Dimension
	if dim <= 0 {
		dim = len(query)
	}
	if len(query) != dim {
		return types.MatchResult{}, &apperrors.DimensionError{Want: dim, Got: len(query)}
	}
	queryNorm := norm(query)

	var best *entities.EnrolledIdentity
	bestSimilarity := 0.0
	for i := range catalog {
		candidate := &catalog[i]
		if len(candidate.Embedding) != dim {
			logger.Warning("skipping catalog entry with unexpected embedding length", logger.LoggerOptions{
				Key:  "id",
				Data: candidate.ID,
			}, logger.LoggerOptions{
				Key:  "length",
				Data: len(candidate.Embedding),
			})
			continue
		}
		candidateNorm := norm(candidate.Embedding)
		if candidateNorm == 0 || queryNorm == 0 {
			continue
		}
		similarity := clamp(dot(query, candidate.Embedding) / (queryNorm * candidateNorm))
		if best == nil || similarity > bestSimilarity {
			best = candidate
			bestSimilarity = similarity
		}
	}

	if best == nil {
		return types.MatchResult{MatchedID: nil, Similarity: 0}, nil
	}
	if bestSimilarity > m.Threshold {
		id := best.ID
		return types.MatchResult{MatchedID: &id, Similarity: bestSimilarity}, nil
	}
	return types.MatchResult{MatchedID: nil, Similarity: bestSimilarity}, nil
}

// CosineSimilarity returns 0 when either vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot(a, b) / (na * nb))
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
