// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// Neighbors is the result of FindSimilarUsers.
type Neighbors struct {
	// Status is StatusOK when Similarities is populated.
	Status Status `json:"status"`

	// UserIDs lists the neighbor IDs in rank order.
	UserIDs []int `json:"user_ids"`

	// Similarities pairs each neighbor with its score, in rank order.
	Similarities []UserSimilarity `json:"similarities"`
}

// Cosine returns the cosine similarity of two equal-length vectors.
// It returns 0 when either vector has zero norm or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return clampUnit(dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Similarity returns the cosine similarity between two users' rows.
// ok is false if either user is not a row.
func (m *Matrix) Similarity(a, b int) (similarity float64, ok bool) {
	ra, okA := m.rowIndex(a)
	rb, okB := m.rowIndex(b)
	if !okA || !okB {
		return 0, false
	}
	return m.cosineRows(ra, rb), true
}

// cosineRows computes cosine similarity between two row indices.
func (m *Matrix) cosineRows(a, b int) float64 {
	na, nb := m.norms[a], m.norms[b]
	if na == 0 || nb == 0 {
		return 0
	}
	return clampUnit(m.dot(a, b) / (na * nb))
}

// clampUnit absorbs floating-point drift outside [-1, 1].
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// FindSimilarUsers returns the k users most similar to target by cosine
// similarity, highest first, ties broken by ascending user ID.
//
// An unknown target yields StatusUserNotFound. A matrix with no other rows,
// or k == 0, yields StatusNoNeighbors. If k exceeds the number of other
// users, all of them are returned. A negative k is an error.
func FindSimilarUsers(m *Matrix, target, k int) (*Neighbors, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: must be non-negative, got %d", ErrInvalidK, k)
	}

	ti, ok := m.rowIndex(target)
	if !ok {
		return &Neighbors{Status: StatusUserNotFound}, nil
	}
	if m.NumUsers() < 2 || k == 0 {
		return &Neighbors{Status: StatusNoNeighbors}, nil
	}

	scores := make([]UserSimilarity, 0, len(m.users)-1)
	for r, id := range m.users {
		if r == ti {
			continue
		}
		scores = append(scores, UserSimilarity{
			UserID:     id,
			Similarity: m.cosineRows(ti, r),
		})
	}

	// users ascend, so a stable sort leaves ties in ascending ID order
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Similarity > scores[j].Similarity
	})

	if len(scores) > k {
		scores = scores[:k]
	}

	ids := make([]int, len(scores))
	for i, s := range scores {
		ids[i] = s.UserID
	}

	return &Neighbors{
		Status:       StatusOK,
		UserIDs:      ids,
		Similarities: scores,
	}, nil
}
