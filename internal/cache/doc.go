// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package cache provides a thread-safe in-memory LRU cache with TTL support.

The recommendation engine uses it to hold computed responses keyed by the
snapshot fingerprint and request parameters, so repeated requests for the
same user skip the similarity scan.

# Usage

	c := cache.New[*recommend.Response](10000, 10*time.Minute)
	c.Add(key, resp)
	if resp, ok := c.Get(key); ok {
	    // served from memory
	}

# Expiration

Entries expire lazily on Get. CleanupExpired sweeps the whole cache and can
be called periodically to release memory held by idle keys.
*/
package cache
