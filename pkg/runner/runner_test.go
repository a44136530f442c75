package runner_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffhb/clubstore/pkg/runner"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error

	mu      sync.Mutex
	started bool
	stopped bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return s.stopErr
}

func (s *fakeService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunStartsAndStopsAll(t *testing.T) {
	a := &fakeService{name: "a"}
	b := &fakeService{name: "b"}
	r := runner.New([]runner.Service{a, b}, runner.WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.started
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	assert.True(t, a.isStopped())
	assert.True(t, b.isStopped())
}

func TestRunStopsStartedServicesOnStartFailure(t *testing.T) {
	a := &fakeService{name: "a"}
	b := &fakeService{name: "b", startErr: errors.New("port in use")}
	c := &fakeService{name: "c"}
	r := runner.New([]runner.Service{a, b, c}, runner.WithLogger(quietLogger()))

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start service b")

	// Only the service that came up is torn down; the rest never started.
	assert.True(t, a.isStopped())
	assert.False(t, b.isStopped())
	assert.False(t, c.isStopped())
}

func TestRunReportsStopErrors(t *testing.T) {
	a := &fakeService{name: "a", stopErr: errors.New("flush failed")}
	r := runner.New([]runner.Service{a}, runner.WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop a")
}
