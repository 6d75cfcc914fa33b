// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

func TestIsRemote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     bool
	}{
		{"https://example.org/rating.csv", true},
		{"HTTP://example.org/anime.csv", true},
		{"/data/rating.csv", false},
		{"rating.csv", false},
		{"ftp://example.org/rating.csv", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.location); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestFetcher_LocalPathUnchanged(t *testing.T) {
	t.Parallel()

	f := NewFetcher(FetcherConfig{Dir: t.TempDir()}, zerolog.Nop())
	got, err := f.Fetch(context.Background(), "/some/local/rating.csv")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != "/some/local/rating.csv" {
		t.Errorf("Fetch() = %q, want the input path", got)
	}
}

func TestFetcher_DownloadsAndCaches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(ratingsCSV))
	}))
	defer server.Close()

	dir := t.TempDir()
	f := NewFetcher(FetcherConfig{Dir: dir}, zerolog.Nop())

	path, err := f.Fetch(context.Background(), server.URL+"/datasets/rating.csv")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if path != filepath.Join(dir, "rating.csv") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != ratingsCSV {
		t.Errorf("downloaded content mismatch")
	}

	if _, err := f.Fetch(context.Background(), server.URL+"/datasets/rating.csv"); err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", hits.Load())
	}

	refreshing := NewFetcher(FetcherConfig{Dir: dir, Refresh: true}, zerolog.Nop())
	if _, err := refreshing.Fetch(context.Background(), server.URL+"/datasets/rating.csv"); err != nil {
		t.Fatalf("refresh Fetch() error = %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 after refresh", hits.Load())
	}
}

func TestFetcher_CircuitOpensAfterFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := t.TempDir()
	f := NewFetcher(FetcherConfig{Dir: dir}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL+"/rating.csv")
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Fatalf("attempt %d error = %v, want ErrUnexpectedStatus", i, err)
		}
	}

	_, err := f.Fetch(context.Background(), server.URL+"/rating.csv")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want open circuit", err)
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3", hits.Load())
	}

	// failed downloads leave nothing behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("download dir has %d entries, want 0", len(entries))
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     string
		wantErr  bool
	}{
		{location: "https://raw.example.org/main/Datasets/anime.csv", want: "anime.csv"},
		{location: "https://example.org/rating.csv?token=abc", want: "rating.csv"},
		{location: "https://example.org/", wantErr: true},
		{location: "https://example.org", wantErr: true},
	}
	for _, tt := range tests {
		got, err := fileName(tt.location)
		if (err != nil) != tt.wantErr {
			t.Errorf("fileName(%q) error = %v, wantErr %v", tt.location, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}
