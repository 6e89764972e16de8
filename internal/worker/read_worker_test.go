package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vantron/internal/collector"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// MockProvider satisfies the collector.ReadingsProvider interface
type MockProvider struct {
	calls atomic.Int32
	Watts float64
	Err   error
}

func (m *MockProvider) Read(ctx context.Context) (*collector.Readings, error) {
	m.calls.Add(1)
	return &collector.Readings{Watts: m.Watts, PowerErr: m.Err}, m.Err
}

// MockStore records inserted cycles
type MockStore struct {
	mu   sync.Mutex
	Rows []*collector.Readings
	Err  error
}

func (m *MockStore) InsertReadings(ctx context.Context, r *collector.Readings) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.Rows = append(m.Rows, r)
	return int64(len(m.Rows)), nil
}

func TestNewReadWorker(t *testing.T) {
	_, err := NewReadWorker(nil, time.Second, nil)
	require.Error(t, err)

	w, err := NewReadWorker(&MockProvider{}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, defaultReadInterval, w.interval)
}

func TestReadWorkerPullOnce(t *testing.T) {
	p := &MockProvider{Watts: 4.2}
	w, err := NewReadWorker(p, time.Second, nil)
	require.NoError(t, err)

	require.Nil(t, w.Last())
	require.NoError(t, w.PullOnce(context.Background()))
	require.EqualValues(t, 1, p.calls.Load())
	require.Equal(t, 4.2, w.Last().Watts)
}

func TestReadWorkerPullOnce_KeepsReadingsOnError(t *testing.T) {
	p := &MockProvider{Err: errors.New("no pmic")}
	w, err := NewReadWorker(p, time.Second, nil)
	require.NoError(t, err)

	err = w.PullOnce(context.Background())
	require.ErrorContains(t, err, "no pmic")
	require.NotNil(t, w.Last())
	require.Error(t, w.Last().PowerErr)
}

func TestReadWorkerStartStop(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	p := &MockProvider{Err: errors.New("no pmic")}
	w, err := NewReadWorker(p, 10*time.Millisecond, log)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.Error(t, w.Start(context.Background()), "second Start must fail")

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()

	calls := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, calls, p.calls.Load(), "no reads after Stop")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.ErrorLevel, entry.Level)
	require.Equal(t, "Read cycle failed", entry.Message)

	// A stopped worker can be started again.
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
}

func TestReadWorkerStop_NotStarted(t *testing.T) {
	w, err := NewReadWorker(&MockProvider{}, time.Second, nil)
	require.NoError(t, err)
	w.Stop()
}

func TestReadWorkerPullOnce_Store(t *testing.T) {
	store := &MockStore{}
	w, err := NewReadWorker(&MockProvider{Err: errors.New("no pmic")}, time.Second, nil)
	require.NoError(t, err)
	w.WithStore(store)

	require.Error(t, w.PullOnce(context.Background()))
	require.Len(t, store.Rows, 1, "failed cycles are still recorded")
}

func TestReadWorkerPullOnce_StoreError(t *testing.T) {
	store := &MockStore{Err: errors.New("disk full")}
	w, err := NewReadWorker(&MockProvider{Watts: 5}, time.Second, nil)
	require.NoError(t, err)
	w.WithStore(store)

	err = w.PullOnce(context.Background())
	require.ErrorContains(t, err, "failed to store readings")
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 5.0, w.Last().Watts)
}
