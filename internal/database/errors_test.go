// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package database

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// mockCloser implements io.Closer for testing
type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

func TestCloseWithLog(t *testing.T) {
	t.Parallel()

	t.Run("nil closer does not panic", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)

		closeWithLog(nil, &logger, "test")

		if buf.Len() > 0 {
			t.Errorf("Expected no log output for nil closer, got: %s", buf.String())
		}
	})

	t.Run("successful close does not log", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)

		closer := &mockCloser{}
		closeWithLog(closer, &logger, "test resource")

		if !closer.closed {
			t.Error("Expected closer to be closed")
		}
		if buf.Len() > 0 {
			t.Errorf("Expected no log output for successful close, got: %s", buf.String())
		}
	})

	t.Run("error during close is logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)

		closer := &mockCloser{err: errors.New("close failed")}
		closeWithLog(closer, &logger, "rows")

		out := buf.String()
		if !strings.Contains(out, "close failed") || !strings.Contains(out, `"type":"rows"`) {
			t.Errorf("log output = %q, want error and resource type", out)
		}
	})

	t.Run("nil logger swallows error", func(t *testing.T) {
		closer := &mockCloser{err: errors.New("close failed")}
		closeWithLog(closer, nil, "rows")
		if !closer.closed {
			t.Error("Expected closer to be closed")
		}
	})
}

func TestCloseQuietly(t *testing.T) {
	t.Parallel()

	closeQuietly(nil)

	closer := &mockCloser{err: errors.New("ignored")}
	closeQuietly(closer)
	if !closer.closed {
		t.Error("Expected closer to be closed")
	}
}

func TestQuoteLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/data/rating.csv", "'/data/rating.csv'"},
		{"/tmp/o'brien/anime.csv", "'/tmp/o''brien/anime.csv'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := quoteLiteral(tt.in); got != tt.want {
			t.Errorf("quoteLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
