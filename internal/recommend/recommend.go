// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"fmt"
	"sort"
	"strings"
)

// CandidatePolicy selects which items count as unseen for a target user.
type CandidatePolicy int

const (
	// CandidateZeroCell treats every item whose cell reads 0 as unseen.
	// An item genuinely rated 0 stays a candidate.
	CandidateZeroCell CandidatePolicy = iota

	// CandidateUnrated treats only items with no rating record as unseen.
	CandidateUnrated
)

// String returns the config name for the policy.
func (p CandidatePolicy) String() string {
	switch p {
	case CandidateZeroCell:
		return "zero_cell"
	case CandidateUnrated:
		return "unrated"
	default:
		return "unknown"
	}
}

// ParseCandidatePolicy parses a config name. Empty selects CandidateZeroCell.
func ParseCandidatePolicy(s string) (CandidatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero_cell":
		return CandidateZeroCell, nil
	case "unrated":
		return CandidateUnrated, nil
	default:
		return CandidateZeroCell, fmt.Errorf("unknown candidate policy %q (valid: zero_cell, unrated)", s)
	}
}

// RecommendOptions are the optional inputs to Recommend.
type RecommendOptions struct {
	// Catalog enriches results with names. Items missing from a non-nil
	// catalog are dropped.
	Catalog *Catalog

	// Category keeps only items whose catalog Type equals it.
	// Requires Catalog.
	Category string

	// Candidates selects the unseen-item rule.
	Candidates CandidatePolicy
}

// Recommendations is the result of Recommend.
type Recommendations struct {
	// Status is StatusOK when the candidate set was scored.
	Status Status `json:"status"`

	// Items is the ranked list, at most topN long.
	Items []Recommendation `json:"items"`

	// Candidates is the number of unseen items that were scored.
	Candidates int `json:"candidates"`
}

// Recommend ranks the target user's unseen items by the mean rating the
// neighbor rows give them.
//
// Each column's score is the plain mean over exactly the neighbor rows that
// exist in the matrix; duplicate and unknown neighbor IDs are ignored.
// Scores sort descending, ties by ascending item ID. With a catalog, items
// without metadata are dropped and the category filter is applied; both
// happen after ranking and before truncation to topN.
//
// A negative topN is an error, as is a category without a catalog.
func Recommend(m *Matrix, target int, neighborIDs []int, topN int, opts RecommendOptions) (*Recommendations, error) {
	if topN < 0 {
		return nil, fmt.Errorf("%w: must be non-negative, got %d", ErrInvalidTopN, topN)
	}
	if opts.Category != "" && opts.Catalog == nil {
		return nil, ErrCategoryWithoutCatalog
	}

	ti, ok := m.rowIndex(target)
	if !ok {
		return &Recommendations{Status: StatusUserNotFound, Items: []Recommendation{}}, nil
	}

	neighborRows := m.neighborRows(neighborIDs)
	if len(neighborRows) == 0 {
		return &Recommendations{Status: StatusNoNeighbors, Items: []Recommendation{}}, nil
	}

	means := m.columnMeans(neighborRows)
	candidates := m.candidates(ti, means, opts.Candidates)
	if len(candidates) == 0 {
		return &Recommendations{Status: StatusNoCandidates, Items: []Recommendation{}}, nil
	}

	// columns ascend, so a stable sort leaves ties in ascending ID order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return &Recommendations{
		Status:     StatusOK,
		Items:      selectTop(candidates, topN, opts),
		Candidates: len(candidates),
	}, nil
}

// neighborRows resolves neighbor IDs to distinct row indices.
func (m *Matrix) neighborRows(neighborIDs []int) []int {
	seen := make(map[int]struct{}, len(neighborIDs))
	rows := make([]int, 0, len(neighborIDs))
	for _, id := range neighborIDs {
		r, ok := m.rowIndex(id)
		if !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		rows = append(rows, r)
	}
	return rows
}

// columnMeans averages every column over the given rows. Missing cells
// contribute 0.
func (m *Matrix) columnMeans(rows []int) []float64 {
	sums := make([]float64, len(m.items))
	for _, r := range rows {
		sr := m.rows[r]
		for i, c := range sr.cols {
			sums[c] += sr.vals[i]
		}
	}
	n := float64(len(rows))
	for c := range sums {
		sums[c] /= n
	}
	return sums
}

// candidates returns the target row's unseen columns with their scores,
// in ascending item order.
func (m *Matrix) candidates(target int, means []float64, policy CandidatePolicy) []Recommendation {
	values := make([]float64, len(m.items))
	rated := make([]bool, len(m.items))
	sr := m.rows[target]
	for i, c := range sr.cols {
		values[c] = sr.vals[i]
		rated[c] = true
	}

	out := make([]Recommendation, 0, len(m.items)-len(sr.cols))
	for c, id := range m.items {
		switch policy {
		case CandidateUnrated:
			if rated[c] {
				continue
			}
		default:
			if values[c] != 0 {
				continue
			}
		}
		out = append(out, Recommendation{AnimeID: id, Score: means[c]})
	}
	return out
}

// selectTop joins ranked candidates against the catalog, applies the
// category filter and keeps the first topN survivors.
func selectTop(ranked []Recommendation, topN int, opts RecommendOptions) []Recommendation {
	out := make([]Recommendation, 0, min(topN, len(ranked)))
	for _, rec := range ranked {
		if len(out) >= topN {
			break
		}
		if opts.Catalog != nil {
			a, ok := opts.Catalog.Lookup(rec.AnimeID)
			if !ok {
				continue
			}
			if opts.Category != "" && a.Type != opts.Category {
				continue
			}
			rec.Name = a.Name
			rec.Type = a.Type
		}
		out = append(out, rec)
	}
	return out
}
