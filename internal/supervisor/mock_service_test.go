// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService implements suture.Service with a scripted number of
// failures before it settles into running until canceled.
type mockService struct {
	name       string
	startCount atomic.Int32
	failCount  atomic.Int32
	maxFails   int32
	started    chan struct{}
}

func newMockService(name string, maxFails int32) *mockService {
	return &mockService{
		name:     name,
		maxFails: maxFails,
		started:  make(chan struct{}, 1),
	}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)

	if m.failCount.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}

	select {
	case m.started <- struct{}{}:
	default:
	}

	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
