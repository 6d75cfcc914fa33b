// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"math"
	"sort"
)

// Default filter thresholds.
const (
	DefaultMinRatingsPerItem = 1000
	DefaultMaxRatingsPerUser = 1000
)

// Matrix is an immutable user×item rating matrix.
//
// Rows and columns are addressed by identifier. A cell with no rating reads
// as 0. Internally each row holds only its rated cells, sorted by column,
// together with the row's Euclidean norm.
type Matrix struct {
	users     []int
	items     []int
	userIndex map[int]int
	itemIndex map[int]int
	rows      []sparseRow
	norms     []float64
	nonZero   int
}

// sparseRow holds the rated cells of one row. cols ascends.
type sparseRow struct {
	cols []int
	vals []float64
}

// cell is a pivot entry before duplicate merging.
type cell struct {
	row   int
	col   int
	score float64
}

// BuildMatrix pivots ratings into a Matrix.
//
// Sentinel records are dropped first. Items are kept when their rating count
// is at least minRatingsPerItem; users are kept when their rating count is
// at most maxRatingsPerUser. Both counts are taken over all non-sentinel
// ratings. Every kept user gets a row, even if none of their ratings land in
// a kept column. Duplicate (user, item) records are averaged.
//
// BuildMatrix never fails; filters that eliminate everything yield an empty
// matrix.
func BuildMatrix(ratings []Rating, minRatingsPerItem, maxRatingsPerUser int) *Matrix {
	itemCounts := make(map[int]int)
	userCounts := make(map[int]int)
	for _, r := range ratings {
		if r.IsUnrated() {
			continue
		}
		itemCounts[r.AnimeID]++
		userCounts[r.UserID]++
	}

	items := make([]int, 0, len(itemCounts))
	for id, n := range itemCounts {
		if n >= minRatingsPerItem {
			items = append(items, id)
		}
	}
	users := make([]int, 0, len(userCounts))
	for id, n := range userCounts {
		if n <= maxRatingsPerUser {
			users = append(users, id)
		}
	}
	sort.Ints(items)
	sort.Ints(users)

	m := &Matrix{
		users:     users,
		items:     items,
		userIndex: indexOf(users),
		itemIndex: indexOf(items),
		rows:      make([]sparseRow, len(users)),
		norms:     make([]float64, len(users)),
	}

	cells := m.collectCells(ratings)
	m.fillRows(cells)

	return m
}

// indexOf maps each identifier to its position.
func indexOf(ids []int) map[int]int {
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}

// collectCells returns the surviving ratings ordered by (row, col).
func (m *Matrix) collectCells(ratings []Rating) []cell {
	cells := make([]cell, 0, len(ratings))
	for _, r := range ratings {
		if r.IsUnrated() {
			continue
		}
		row, ok := m.userIndex[r.UserID]
		if !ok {
			continue
		}
		col, ok := m.itemIndex[r.AnimeID]
		if !ok {
			continue
		}
		cells = append(cells, cell{row: row, col: col, score: float64(r.Score)})
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].row != cells[j].row {
			return cells[i].row < cells[j].row
		}
		return cells[i].col < cells[j].col
	})
	return cells
}

// fillRows groups sorted cells into rows, averaging duplicates, and
// computes row norms.
func (m *Matrix) fillRows(cells []cell) {
	for i := 0; i < len(cells); {
		row := cells[i].row
		var sr sparseRow
		for i < len(cells) && cells[i].row == row {
			col := cells[i].col
			sum, n := 0.0, 0
			for i < len(cells) && cells[i].row == row && cells[i].col == col {
				sum += cells[i].score
				n++
				i++
			}
			sr.cols = append(sr.cols, col)
			sr.vals = append(sr.vals, sum/float64(n))
		}
		m.rows[row] = sr
		m.nonZero += len(sr.cols)
	}

	for r := range m.rows {
		var sq float64
		for _, v := range m.rows[r].vals {
			sq += v * v
		}
		m.norms[r] = math.Sqrt(sq)
	}
}

// NumUsers returns the row count.
func (m *Matrix) NumUsers() int {
	if m == nil {
		return 0
	}
	return len(m.users)
}

// NumItems returns the column count.
func (m *Matrix) NumItems() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// NonZero returns the number of rated cells.
func (m *Matrix) NonZero() int {
	if m == nil {
		return 0
	}
	return m.nonZero
}

// Users returns the row identifiers in ascending order.
func (m *Matrix) Users() []int {
	if m == nil {
		return nil
	}
	out := make([]int, len(m.users))
	copy(out, m.users)
	return out
}

// Items returns the column identifiers in ascending order.
func (m *Matrix) Items() []int {
	if m == nil {
		return nil
	}
	out := make([]int, len(m.items))
	copy(out, m.items)
	return out
}

// HasUser reports whether userID is a row.
func (m *Matrix) HasUser(userID int) bool {
	_, ok := m.rowIndex(userID)
	return ok
}

// HasItem reports whether itemID is a column.
func (m *Matrix) HasItem(itemID int) bool {
	if m == nil {
		return false
	}
	_, ok := m.itemIndex[itemID]
	return ok
}

// Value returns the cell for (userID, itemID), 0 if absent.
func (m *Matrix) Value(userID, itemID int) float64 {
	r, ok := m.rowIndex(userID)
	if !ok {
		return 0
	}
	c, ok := m.itemIndex[itemID]
	if !ok {
		return 0
	}
	v, _ := m.cellAt(r, c)
	return v
}

// Rated reports whether the user has a rating record for the item.
// Unlike Value, it distinguishes "never rated" from a stored zero.
func (m *Matrix) Rated(userID, itemID int) bool {
	r, ok := m.rowIndex(userID)
	if !ok {
		return false
	}
	c, ok := m.itemIndex[itemID]
	if !ok {
		return false
	}
	_, rated := m.cellAt(r, c)
	return rated
}

// Row returns a dense copy of the user's row, ordered like Items.
func (m *Matrix) Row(userID int) ([]float64, bool) {
	r, ok := m.rowIndex(userID)
	if !ok {
		return nil, false
	}
	dense := make([]float64, len(m.items))
	sr := m.rows[r]
	for i, c := range sr.cols {
		dense[c] = sr.vals[i]
	}
	return dense, true
}

// RatingCount returns how many surviving columns the user rated.
func (m *Matrix) RatingCount(userID int) int {
	r, ok := m.rowIndex(userID)
	if !ok {
		return 0
	}
	return len(m.rows[r].cols)
}

// MostActiveUsers returns up to n users ordered by rated-cell count
// descending, ties by ascending user ID.
func (m *Matrix) MostActiveUsers(n int) []int {
	if m == nil || n <= 0 {
		return nil
	}
	order := make([]int, len(m.users))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(m.rows[order[i]].cols) > len(m.rows[order[j]].cols)
	})
	if len(order) > n {
		order = order[:n]
	}
	ids := make([]int, len(order))
	for i, r := range order {
		ids[i] = m.users[r]
	}
	return ids
}

func (m *Matrix) rowIndex(userID int) (int, bool) {
	if m == nil {
		return 0, false
	}
	r, ok := m.userIndex[userID]
	return r, ok
}

// cellAt returns the stored value at (r, c) and whether one exists.
func (m *Matrix) cellAt(r, c int) (float64, bool) {
	sr := m.rows[r]
	i := sort.SearchInts(sr.cols, c)
	if i < len(sr.cols) && sr.cols[i] == c {
		return sr.vals[i], true
	}
	return 0, false
}

// dot returns the inner product of rows a and b.
func (m *Matrix) dot(a, b int) float64 {
	ra, rb := m.rows[a], m.rows[b]
	var sum float64
	i, j := 0, 0
	for i < len(ra.cols) && j < len(rb.cols) {
		switch {
		case ra.cols[i] == rb.cols[j]:
			sum += ra.vals[i] * rb.vals[j]
			i++
			j++
		case ra.cols[i] < rb.cols[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
