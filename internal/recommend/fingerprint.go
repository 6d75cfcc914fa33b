// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a content hash of the matrix. Matrices built from the
// same ratings and thresholds share a fingerprint regardless of input order.
func (m *Matrix) Fingerprint() uint64 {
	d := xxhash.New()
	if m == nil {
		return d.Sum64()
	}

	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}

	writeInt(len(m.users))
	for _, id := range m.users {
		writeInt(id)
	}
	writeInt(len(m.items))
	for _, id := range m.items {
		writeInt(id)
	}
	for _, sr := range m.rows {
		writeInt(len(sr.cols))
		for i, c := range sr.cols {
			writeInt(c)
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(sr.vals[i]))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}

// Fingerprint returns a content hash over the fields that reach responses.
func (c *Catalog) Fingerprint() uint64 {
	d := xxhash.New()
	if c == nil {
		return d.Sum64()
	}

	ids := make([]int, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		a := c.byID[id]
		_, _ = d.WriteString(strconv.Itoa(id))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(a.Name)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(a.Type)
		_, _ = d.WriteString("\x00")
	}
	return d.Sum64()
}

// snapshotFingerprint combines the matrix and catalog hashes with the
// candidate policy into the identifier used for cache and store keys.
// Matrix thresholds are covered by the matrix hash, since they decide which
// rows and columns it holds.
func snapshotFingerprint(m *Matrix, c *Catalog, policy CandidatePolicy) string {
	return strconv.FormatUint(m.Fingerprint(), 16) + "-" + strconv.FormatUint(c.Fingerprint(), 16) + "-" + policy.String()
}
