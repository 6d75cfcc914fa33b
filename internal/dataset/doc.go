// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package dataset loads the anime and rating CSV files and summarizes them.

# Files

Two files are read:

	rating.csv  user_id,anime_id,rating
	anime.csv   anime_id,name,genre,type,episodes,rating,members

Columns are located by header name, so column order does not matter and
extra columns are ignored. A rating of -1 marks a title the user watched but
did not rate; such records are counted and dropped before they reach the
recommendation engine. In anime.csv an episodes value of "Unknown" and a
blank rating both map to nil, and names are HTML-unescaped.

Rows that cannot be parsed are skipped and counted in the ParseReport rather
than failing the whole load.

# Remote Locations

A location starting with http:// or https:// is downloaded once into the
configured download directory and parsed from there. Downloads go through a
circuit breaker so a failing mirror is not hammered by periodic reloads:

	src, err := dataset.NewCSVSource(dataset.Config{
	    RatingsLocation: "https://example.org/rating.csv",
	    AnimeLocation:   "https://example.org/anime.csv",
	    DownloadDir:     "/data/downloads",
	}, logger)
	if err != nil {
	    return err
	}
	if err := engine.Load(ctx, src); err != nil {
	    return err
	}

# Statistics

Summarize reproduces the exploratory summary of the data: type and genre
counts, the rating histogram, average ratings per user and per anime, the
most active users, the most rated anime and the effect of the matrix
filters. internal/database computes the same Stats in SQL.
*/
package dataset
