// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompression_WithGzipAccept(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat(`{"anime_id":1,"score":9.5},`, 100)
	handler := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "999")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(payload)); err != nil {
			t.Errorf("Write() error = %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	if rec.Header().Get("Content-Length") != "" {
		t.Error("Content-Length should be removed")
	}
	if rec.Header().Get("Vary") != "Accept-Encoding" {
		t.Errorf("Vary = %q", rec.Header().Get("Vary"))
	}

	reader, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(decompressed) != payload {
		t.Error("decompressed body does not match")
	}
}

func TestCompression_PassThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		acceptEncoding string
	}{
		{name: "no header", method: http.MethodGet},
		{name: "deflate only", method: http.MethodGet, acceptEncoding: "deflate, br"},
		{name: "gzip refused", method: http.MethodGet, acceptEncoding: "gzip;q=0, br"},
		{name: "head request", method: http.MethodHead, acceptEncoding: "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("plain"))
			}))
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Header().Get("Content-Encoding") != "" {
				t.Errorf("Content-Encoding = %q, want none", rec.Header().Get("Content-Encoding"))
			}
			if tt.method == http.MethodGet && rec.Body.String() != "plain" {
				t.Errorf("body = %q, want plain", rec.Body.String())
			}
		})
	}
}

func TestAcceptsGzip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   bool
	}{
		{"gzip", true},
		{"GZIP", true},
		{"br, gzip;q=0.8", true},
		{"gzip; q=0", false},
		{"gzip;q=0.000", false},
		{"identity", false},
		{"", false},
		{"xgzip", false},
	}

	for _, tt := range tests {
		if got := acceptsGzip(tt.header); got != tt.want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestGzipResponseWriter_ImplicitHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	gz := gzip.NewWriter(rec)
	w := &gzipResponseWriter{Writer: gz, ResponseWriter: rec}

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !w.wroteHeader {
		t.Error("Write should mark the header as written")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
