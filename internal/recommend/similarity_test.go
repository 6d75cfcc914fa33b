// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"
)

const tolerance = 1e-9

// neighborhoodFixture has five users over four items with varied overlap.
func neighborhoodFixture() []Rating {
	return []Rating{
		{UserID: 1, AnimeID: 10, Score: 6},
		{UserID: 1, AnimeID: 20, Score: 4},
		{UserID: 1, AnimeID: 30, Score: 2},

		// identical to user 1
		{UserID: 2, AnimeID: 10, Score: 6},
		{UserID: 2, AnimeID: 20, Score: 4},
		{UserID: 2, AnimeID: 30, Score: 2},

		{UserID: 3, AnimeID: 10, Score: 8},
		{UserID: 3, AnimeID: 40, Score: 6},

		{UserID: 4, AnimeID: 40, Score: 10},

		// same direction as user 1, different magnitude
		{UserID: 5, AnimeID: 10, Score: 3},
		{UserID: 5, AnimeID: 20, Score: 2},
		{UserID: 5, AnimeID: 30, Score: 1},
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "scaled", a: []float64{1, 2, 3}, b: []float64{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 5}, want: 0},
		{name: "opposite", a: []float64{1, 2}, b: []float64{-1, -2}, want: -1},
		{name: "zero norm left", a: []float64{0, 0}, b: []float64{1, 2}, want: 0},
		{name: "zero norm right", a: []float64{3, 4}, b: []float64{0, 0}, want: 0},
		{name: "length mismatch", a: []float64{1}, b: []float64{1, 2}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatal("Cosine() returned NaN")
			}
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatrix_SimilarityMatchesDenseCosine(t *testing.T) {
	m := BuildMatrix(neighborhoodFixture(), 0, 1000)
	users := m.Users()

	for _, a := range users {
		for _, b := range users {
			ra, _ := m.Row(a)
			rb, _ := m.Row(b)
			want := Cosine(ra, rb)

			got, ok := m.Similarity(a, b)
			if !ok {
				t.Fatalf("Similarity(%d, %d) not ok", a, b)
			}
			if math.Abs(got-want) > tolerance {
				t.Errorf("Similarity(%d, %d) = %v, dense cosine = %v", a, b, got, want)
			}

			reverse, _ := m.Similarity(b, a)
			if math.Abs(got-reverse) > tolerance {
				t.Errorf("Similarity not symmetric for (%d, %d): %v vs %v", a, b, got, reverse)
			}
			if got < -1 || got > 1 {
				t.Errorf("Similarity(%d, %d) = %v outside [-1, 1]", a, b, got)
			}
		}
	}

	if _, ok := m.Similarity(1, 999); ok {
		t.Error("Similarity with unknown user should not be ok")
	}
}

func TestFindSimilarUsers(t *testing.T) {
	m := BuildMatrix(neighborhoodFixture(), 0, 1000)

	t.Run("ranks identical and proportional users first", func(t *testing.T) {
		got, err := FindSimilarUsers(m, 1, 2)
		if err != nil {
			t.Fatalf("FindSimilarUsers() error = %v", err)
		}
		if got.Status != StatusOK {
			t.Fatalf("Status = %v, want ok", got.Status)
		}
		// users 2 and 5 both point the same way as user 1
		top := append([]int(nil), got.UserIDs...)
		sort.Ints(top)
		if !reflect.DeepEqual(top, []int{2, 5}) {
			t.Errorf("UserIDs = %v, want {2, 5}", got.UserIDs)
		}
		for _, s := range got.Similarities {
			if math.Abs(s.Similarity-1) > tolerance {
				t.Errorf("similarity to %d = %v, want 1", s.UserID, s.Similarity)
			}
		}
	})

	t.Run("properties hold for every user and k", func(t *testing.T) {
		for _, target := range m.Users() {
			for k := 1; k <= 6; k++ {
				got, err := FindSimilarUsers(m, target, k)
				if err != nil {
					t.Fatalf("FindSimilarUsers(%d, %d) error = %v", target, k, err)
				}
				if len(got.Similarities) > k {
					t.Errorf("target %d k=%d returned %d results", target, k, len(got.Similarities))
				}
				wantLen := min(k, m.NumUsers()-1)
				if len(got.Similarities) != wantLen {
					t.Errorf("target %d k=%d len = %d, want %d", target, k, len(got.Similarities), wantLen)
				}
				for i, s := range got.Similarities {
					if s.UserID == target {
						t.Errorf("target %d returned itself", target)
					}
					if s.Similarity < -1 || s.Similarity > 1 {
						t.Errorf("score %v outside [-1, 1]", s.Similarity)
					}
					if got.UserIDs[i] != s.UserID {
						t.Errorf("UserIDs[%d] = %d, Similarities[%d].UserID = %d", i, got.UserIDs[i], i, s.UserID)
					}
					if i > 0 {
						prev := got.Similarities[i-1]
						if prev.Similarity < s.Similarity {
							t.Errorf("not sorted: %v before %v", prev.Similarity, s.Similarity)
						}
						if prev.Similarity == s.Similarity && prev.UserID > s.UserID {
							t.Errorf("tie not broken by ascending ID: %d before %d", prev.UserID, s.UserID)
						}
					}
				}
			}
		}
	})

	t.Run("k larger than available returns everyone else", func(t *testing.T) {
		got, err := FindSimilarUsers(m, 4, 100)
		if err != nil {
			t.Fatalf("FindSimilarUsers() error = %v", err)
		}
		if len(got.UserIDs) != 4 {
			t.Errorf("len(UserIDs) = %d, want 4", len(got.UserIDs))
		}
	})
}

func TestFindSimilarUsers_EmptyOutcomes(t *testing.T) {
	single := BuildMatrix([]Rating{{UserID: 1, AnimeID: 10, Score: 5}}, 0, 1000)
	full := BuildMatrix(neighborhoodFixture(), 0, 1000)

	tests := []struct {
		name   string
		m      *Matrix
		target int
		k      int
		want   Status
	}{
		{name: "unknown user", m: full, target: 999, k: 5, want: StatusUserNotFound},
		{name: "nil matrix", m: nil, target: 1, k: 5, want: StatusUserNotFound},
		{name: "only user in matrix", m: single, target: 1, k: 5, want: StatusNoNeighbors},
		{name: "k zero", m: full, target: 1, k: 0, want: StatusNoNeighbors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindSimilarUsers(tt.m, tt.target, tt.k)
			if err != nil {
				t.Fatalf("FindSimilarUsers() error = %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v", got.Status, tt.want)
			}
			if len(got.UserIDs) != 0 || len(got.Similarities) != 0 {
				t.Errorf("expected empty results, got %v", got.UserIDs)
			}
		})
	}
}

func TestFindSimilarUsers_NegativeK(t *testing.T) {
	m := BuildMatrix(neighborhoodFixture(), 0, 1000)

	_, err := FindSimilarUsers(m, 1, -1)
	if !errors.Is(err, ErrInvalidK) {
		t.Errorf("error = %v, want ErrInvalidK", err)
	}
}

func TestFindSimilarUsers_AllZeroRow(t *testing.T) {
	ratings := append(neighborhoodFixture(), Rating{UserID: 6, AnimeID: 50, Score: 8})
	// item 50 has one rating and is filtered out, leaving user 6 all zeros
	m := BuildMatrix(ratings, 2, 1000)

	got, err := FindSimilarUsers(m, 6, 10)
	if err != nil {
		t.Fatalf("FindSimilarUsers() error = %v", err)
	}
	if got.Status != StatusOK {
		t.Fatalf("Status = %v, want ok", got.Status)
	}
	for _, s := range got.Similarities {
		if s.Similarity != 0 {
			t.Errorf("similarity to %d = %v, want 0", s.UserID, s.Similarity)
		}
	}
	if !reflect.DeepEqual(got.UserIDs, []int{1, 2, 3, 4, 5}) {
		t.Errorf("UserIDs = %v, want ascending order on all-zero ties", got.UserIDs)
	}
}

func TestFindSimilarUsers_Scenario(t *testing.T) {
	m := BuildMatrix(scenarioRatings(), 0, 1000)

	got, err := FindSimilarUsers(m, 1, 2)
	if err != nil {
		t.Fatalf("FindSimilarUsers() error = %v", err)
	}
	if !reflect.DeepEqual(got.UserIDs, []int{2, 3}) {
		t.Fatalf("UserIDs = %v, want B(2) ranked above C(3)", got.UserIDs)
	}
	if got.Similarities[0].Similarity <= got.Similarities[1].Similarity {
		t.Errorf("B score %v should exceed C score %v", got.Similarities[0].Similarity, got.Similarities[1].Similarity)
	}
}
