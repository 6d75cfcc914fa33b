// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

// Catalog is an immutable anime metadata index keyed by ID.
type Catalog struct {
	byID map[int]Anime
}

// NewCatalog indexes anime by ID. The first record wins on duplicate IDs.
func NewCatalog(anime []Anime) *Catalog {
	byID := make(map[int]Anime, len(anime))
	for _, a := range anime {
		if _, exists := byID[a.ID]; exists {
			continue
		}
		byID[a.ID] = a
	}
	return &Catalog{byID: byID}
}

// Lookup returns the metadata for id.
func (c *Catalog) Lookup(id int) (Anime, bool) {
	if c == nil {
		return Anime{}, false
	}
	a, ok := c.byID[id]
	return a, ok
}

// Len returns the number of indexed anime.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
